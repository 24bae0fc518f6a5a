package math3d

import "math"

// Mat4 is a 4x4 homogeneous transform stored in column-major order.
//
// Memory layout (indices):
// | 0  4  8  12 |
// | 1  5  9  13 |
// | 2  6  10 14 |
// | 3  7  11 15 |
//
// Columns 0..2 are the transformed X, Y and Z axes and column 3 is the
// translation, so element (row, col) lives at m[row+col*4].
type Mat4 [16]float64

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate creates a translation matrix.
func Translate(v Vec3) Mat4 {
	m := Identity()
	m.SetTranslation(v)
	return m
}

// Scale creates a non-uniform scaling matrix.
func Scale(v Vec3) Mat4 {
	return Mat4{
		v.X, 0, 0, 0,
		0, v.Y, 0, 0,
		0, 0, v.Z, 0,
		0, 0, 0, 1,
	}
}

// ScaleUniform creates a uniform scaling matrix.
func ScaleUniform(s float64) Mat4 {
	return Scale(V3(s, s, s))
}

// RotateX creates a rotation around the X axis (right-handed).
func RotateX(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		1, 0, 0, 0,
		0, c, s, 0,
		0, -s, c, 0,
		0, 0, 0, 1,
	}
}

// RotateY creates a rotation around the Y axis (right-handed).
func RotateY(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		c, 0, -s, 0,
		0, 1, 0, 0,
		s, 0, c, 0,
		0, 0, 0, 1,
	}
}

// RotateZ creates a rotation around the Z axis (right-handed).
func RotateZ(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		c, s, 0, 0,
		-s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Perspective creates an OpenGL-style perspective projection.
// fovy is the vertical field of view in radians and aspect is width/height.
// Camera space looks down -Z; the near plane maps to ndc z = -1.
func Perspective(fovy, aspect, near, far float64) Mat4 {
	e := 1 / math.Tan(fovy/2)
	d := near - far
	return Mat4{
		e / aspect, 0, 0, 0,
		0, e, 0, 0,
		0, 0, (near + far) / d, -1,
		0, 0, 2 * near * far / d, 0,
	}
}

// Mul returns a * b (b is applied first).
func (a Mat4) Mul(b Mat4) Mat4 {
	var m Mat4
	for col := range 4 {
		for row := range 4 {
			m[row+col*4] = a[row]*b[col*4] +
				a[row+4]*b[1+col*4] +
				a[row+8]*b[2+col*4] +
				a[row+12]*b[3+col*4]
		}
	}
	return m
}

// MulPoint transforms v as a point (w=1), dividing by the resulting w.
func (m Mat4) MulPoint(v Vec3) Vec3 {
	w := m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]
	p := Vec3{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12],
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13],
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14],
	}
	if w == 1 || w == 0 {
		return p
	}
	return p.Scale(1 / w)
}

// MulDir transforms v as a direction (w=0): no translation is applied.
func (m Mat4) MulDir(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z,
	}
}

// MulVec4 transforms a homogeneous vector.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]*v.W,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]*v.W,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]*v.W,
		m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]*v.W,
	}
}

// Transpose returns the transposed matrix.
func (m Mat4) Transpose() Mat4 {
	var t Mat4
	for row := range 4 {
		for col := range 4 {
			t[col+row*4] = m[row+col*4]
		}
	}
	return t
}

// Inverse returns the inverse of m using Gauss-Jordan elimination with
// partial pivoting. A singular matrix yields the identity.
func (m Mat4) Inverse() Mat4 {
	inv, ok := m.InverseOK()
	if !ok {
		return Identity()
	}
	return inv
}

// InverseOK returns the inverse of m and false if m is singular.
func (m Mat4) InverseOK() (Mat4, bool) {
	// a is row-major scratch: a[r][c] with the identity appended.
	var a [4][8]float64
	for r := range 4 {
		for c := range 4 {
			a[r][c] = m[r+c*4]
		}
		a[r][4+r] = 1
	}

	for col := range 4 {
		pivot := col
		for r := col + 1; r < 4; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-300 {
			return Mat4{}, false
		}
		a[col], a[pivot] = a[pivot], a[col]

		inv := 1 / a[col][col]
		for c := range 8 {
			a[col][c] *= inv
		}
		for r := range 4 {
			if r == col || a[r][col] == 0 {
				continue
			}
			f := a[r][col]
			for c := range 8 {
				a[r][c] -= f * a[col][c]
			}
		}
	}

	var out Mat4
	for r := range 4 {
		for c := range 4 {
			out[r+c*4] = a[r][4+c]
		}
	}
	return out, true
}

// Get returns the element at (row, col).
func (m Mat4) Get(row, col int) float64 {
	return m[row+col*4]
}

// Set sets the element at (row, col).
func (m *Mat4) Set(row, col int, val float64) {
	m[row+col*4] = val
}

// Row returns row i as a Vec4.
func (m Mat4) Row(i int) Vec4 {
	return Vec4{m[i], m[i+4], m[i+8], m[i+12]}
}

// SetRow replaces row i.
func (m *Mat4) SetRow(i int, v Vec4) {
	m[i], m[i+4], m[i+8], m[i+12] = v.X, v.Y, v.Z, v.W
}

// XAxis returns the transformed X axis (column 0).
func (m Mat4) XAxis() Vec3 {
	return Vec3{m[0], m[1], m[2]}
}

// YAxis returns the transformed Y axis (column 1).
func (m Mat4) YAxis() Vec3 {
	return Vec3{m[4], m[5], m[6]}
}

// ZAxis returns the transformed Z axis (column 2).
func (m Mat4) ZAxis() Vec3 {
	return Vec3{m[8], m[9], m[10]}
}

// SetAxes overwrites the three basis columns.
func (m *Mat4) SetAxes(x, y, z Vec3) {
	m[0], m[1], m[2] = x.X, x.Y, x.Z
	m[4], m[5], m[6] = y.X, y.Y, y.Z
	m[8], m[9], m[10] = z.X, z.Y, z.Z
}

// Translation extracts the translation component.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[12], m[13], m[14]}
}

// SetTranslation sets the translation component.
func (m *Mat4) SetTranslation(v Vec3) {
	m[12] = v.X
	m[13] = v.Y
	m[14] = v.Z
}

// ApproxEqual reports whether every element differs by at most eps.
func (m Mat4) ApproxEqual(o Mat4, eps float64) bool {
	for i := range m {
		if math.Abs(m[i]-o[i]) > eps {
			return false
		}
	}
	return true
}
