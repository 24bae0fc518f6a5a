package models

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/noneuclid/pkg/math3d"
)

// LoadOBJ loads a Wavefront OBJ file.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()
	return ParseOBJ(f, filepath.Base(path))
}

// objCorner is one face corner: 1-based position and texcoord indices,
// already resolved from negative (relative) form. uv is 0 when absent.
type objCorner struct {
	pos, uv int
}

// ParseOBJ reads OBJ geometry from r.
//
// Supported statements: v, vt, f (triangles and quads, in the v, v/t, v//n
// and v/t/n forms, with negative indices) and the collider extension
//
//	c a b c
//
// which builds a collider from three position indices. A leading "*" in
// place of indices refers to the most recently declared vertices: "f *" and
// "c *" use the last three, "f **" the last four.
func ParseOBJ(r io.Reader, name string) (*Mesh, error) {
	mesh := NewMesh(name)

	var (
		positions []math3d.Vec3
		uvs       []math3d.Vec2
		lineNo    int
	)
	corners := make(map[objCorner]int)

	vertex := func(c objCorner) int {
		if idx, ok := corners[c]; ok {
			return idx
		}
		var uv math3d.Vec2
		if c.uv > 0 {
			uv = uvs[c.uv-1]
		}
		idx := mesh.AddVertex(positions[c.pos-1], uv)
		corners[c] = idx
		return idx
	}

	wrap := func(err error) error {
		return fmt.Errorf("%s:%d: %w", name, lineNo, err)
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, wrap(err)
			}
			positions = append(positions, math3d.V3(v[0], v[1], v[2]))

		case "vt":
			v, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, wrap(err)
			}
			uvs = append(uvs, math3d.V2(v[0], v[1]))

		case "f":
			face, err := parseFace(fields[1:], len(positions), len(uvs))
			if err != nil {
				return nil, wrap(err)
			}
			ids := make([]int, len(face))
			for i, c := range face {
				ids[i] = vertex(c)
			}
			if len(ids) == 4 {
				mesh.AddQuad(ids[0], ids[1], ids[2], ids[3])
			} else {
				mesh.AddTriangle(ids[0], ids[1], ids[2])
			}

		case "c":
			idx, err := parseColliderIndices(fields[1:], len(positions))
			if err != nil {
				return nil, wrap(err)
			}
			if err := mesh.AddCollider(positions[idx[0]-1], positions[idx[1]-1], positions[idx[2]-1]); err != nil {
				return nil, wrap(err)
			}

		default:
			// vn, o, g, s, usemtl, mtllib: not needed for drawing or contact.
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	mesh.CalculateBounds()
	return mesh, nil
}

func parseFloats(fields []string, n int) ([]float64, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("expected %d numbers, got %d", n, len(fields))
	}
	out := make([]float64, n)
	for i := range n {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", fields[i], err)
		}
		out[i] = v
	}
	return out, nil
}

// resolveIndex converts a 1-based or negative OBJ index into a 1-based one.
func resolveIndex(s string, count int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("parse index %q: %w", s, err)
	}
	if i < 0 {
		i = count + i + 1
	}
	if i < 1 || i > count {
		return 0, fmt.Errorf("index %s out of range (have %d)", s, count)
	}
	return i, nil
}

func parseFace(fields []string, numPos, numUV int) ([]objCorner, error) {
	if len(fields) == 1 && (fields[0] == "*" || fields[0] == "**") {
		n := len(fields[0]) + 2
		if numPos < n {
			return nil, fmt.Errorf("wildcard face needs %d vertices, have %d", n, numPos)
		}
		face := make([]objCorner, n)
		for i := range face {
			face[i].pos = numPos - n + 1 + i
			if uv := numUV - n + 1 + i; uv >= 1 {
				face[i].uv = uv
			}
		}
		return face, nil
	}

	if len(fields) != 3 && len(fields) != 4 {
		return nil, fmt.Errorf("face must have 3 or 4 corners, got %d", len(fields))
	}
	face := make([]objCorner, len(fields))
	for i, f := range fields {
		parts := strings.Split(f, "/")
		pos, err := resolveIndex(parts[0], numPos)
		if err != nil {
			return nil, err
		}
		face[i].pos = pos
		switch {
		case len(parts) == 1:
			// A bare index names the matching vt as well, when there is one.
			if pos <= numUV {
				face[i].uv = pos
			}
		case parts[1] != "":
			uv, err := resolveIndex(parts[1], numUV)
			if err != nil {
				return nil, err
			}
			face[i].uv = uv
		}
	}
	return face, nil
}

func parseColliderIndices(fields []string, numPos int) ([3]int, error) {
	var idx [3]int
	if len(fields) > 0 && fields[0] == "*" {
		if numPos < 3 {
			return idx, fmt.Errorf("wildcard collider needs 3 vertices, have %d", numPos)
		}
		return [3]int{numPos - 2, numPos - 1, numPos}, nil
	}
	if len(fields) < 3 {
		return idx, fmt.Errorf("collider needs 3 indices, got %d", len(fields))
	}
	for i := range 3 {
		v, err := resolveIndex(fields[i], numPos)
		if err != nil {
			return idx, err
		}
		idx[i] = v
	}
	return idx, nil
}
