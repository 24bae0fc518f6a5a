package models

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/taigrr/noneuclid/pkg/collide"
	"github.com/taigrr/noneuclid/pkg/math3d"
)

// ColliderMeshPrefix marks glTF meshes whose triangles are contact geometry
// only. Their triangles must be right triangles.
const ColliderMeshPrefix = "collider"

// GLTFLoader loads GLTF/GLB files into a Mesh.
type GLTFLoader struct {
	// DeriveColliders builds colliders from the drawable right triangles
	// when the document has no collider meshes.
	DeriveColliders bool

	// Logger, if set, reports images that could not be read or decoded.
	Logger *log.Logger
}

// NewGLTFLoader creates a loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{DeriveColliders: true}
}

// LoadGLTF loads a .gltf or .glb file with default options.
func LoadGLTF(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// Load loads a GLTF or GLB file. Meshes named with ColliderMeshPrefix become
// colliders; all others become drawable faces. The first embedded image, if
// any, is attached as Mesh.Image.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh := NewMesh(filepath.Base(path))
	var hitTris [][3]math3d.Vec3

	for _, m := range doc.Meshes {
		isCollider := strings.HasPrefix(strings.ToLower(m.Name), ColliderMeshPrefix)
		for pi, prim := range m.Primitives {
			tris, err := l.readPrimitive(doc, prim, mesh, !isCollider)
			if err != nil {
				return nil, fmt.Errorf("mesh %q primitive %d: %w", m.Name, pi, err)
			}
			if isCollider {
				hitTris = append(hitTris, tris...)
			}
		}
	}

	for i, tri := range hitTris {
		if err := mesh.AddCollider(tri[0], tri[1], tri[2]); err != nil {
			return nil, fmt.Errorf("collider triangle %d: %w", i, err)
		}
	}
	if len(hitTris) == 0 && l.DeriveColliders {
		deriveColliders(mesh)
	}

	mesh.Image = l.firstImage(doc, filepath.Dir(path))
	mesh.CalculateBounds()
	return mesh, nil
}

// readPrimitive reads one triangle primitive. When draw is set the triangles
// are appended to mesh; the triangle corner positions are always returned.
func (l *GLTFLoader) readPrimitive(doc *gltf.Document, prim *gltf.Primitive, mesh *Mesh, draw bool) ([][3]math3d.Vec3, error) {
	if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
		return nil, nil
	}
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, nil
	}

	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}

	var uvs [][2]float32
	if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[uvIdx], nil)
		if err != nil {
			return nil, fmt.Errorf("read uvs: %w", err)
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	base := len(mesh.Vertices)
	if draw {
		for i, p := range positions {
			var uv math3d.Vec2
			if i < len(uvs) {
				// glTF puts v=0 at the top of the image.
				uv = math3d.V2(float64(uvs[i][0]), 1-float64(uvs[i][1]))
			}
			mesh.AddVertex(vec3(p), uv)
		}
	}

	tris := make([][3]math3d.Vec3, 0, len(indices)/3)
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := int(indices[i]), int(indices[i+1]), int(indices[i+2])
		if a >= len(positions) || b >= len(positions) || c >= len(positions) {
			return nil, errors.New("index out of range")
		}
		tris = append(tris, [3]math3d.Vec3{vec3(positions[a]), vec3(positions[b]), vec3(positions[c])})
		if draw {
			mesh.AddTriangle(base+a, base+b, base+c)
		}
	}
	return tris, nil
}

// deriveColliders adds a collider for every drawable right triangle.
func deriveColliders(mesh *Mesh) {
	for _, f := range mesh.Faces {
		col, err := collide.NewCollider(
			mesh.Vertices[f.V[0]].Position,
			mesh.Vertices[f.V[1]].Position,
			mesh.Vertices[f.V[2]].Position,
		)
		if err != nil {
			continue
		}
		mesh.Colliders = append(mesh.Colliders, col)
	}
}

// firstImage decodes the first embedded or side-by-side image of doc.
func (l *GLTFLoader) firstImage(doc *gltf.Document, dir string) image.Image {
	for i, img := range doc.Images {
		var data []byte
		switch {
		case img.BufferView != nil:
			bv := doc.BufferViews[*img.BufferView]
			buf := doc.Buffers[bv.Buffer]
			if buf.Data != nil {
				data = buf.Data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]
			}
		case img.URI != "" && !strings.HasPrefix(img.URI, "data:"):
			var err error
			data, err = os.ReadFile(filepath.Join(dir, img.URI))
			if err != nil {
				l.warn("read gltf image", "image", i, "uri", img.URI, "err", err)
				continue
			}
		}
		if len(data) == 0 {
			continue
		}
		decoded, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			l.warn("decode gltf image", "image", i, "err", err)
			continue
		}
		return decoded
	}
	return nil
}

func (l *GLTFLoader) warn(msg string, keyvals ...any) {
	if l.Logger != nil {
		l.Logger.Warn(msg, keyvals...)
	}
}

func vec3(p [3]float32) math3d.Vec3 {
	return math3d.V3(float64(p[0]), float64(p[1]), float64(p[2]))
}
