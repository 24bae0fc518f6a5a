package math3d

// Placement transforms follow one convention everywhere: an entity is scaled,
// then rolled (Z), pitched (X), yawed (Y) and finally translated.

// LocalToWorld builds T(pos)·Ry·Rx·Rz·S(scale).
func LocalToWorld(pos, euler, scale Vec3) Mat4 {
	return Translate(pos).
		Mul(RotateY(euler.Y)).
		Mul(RotateX(euler.X)).
		Mul(RotateZ(euler.Z)).
		Mul(Scale(scale))
}

// WorldToLocal builds the exact reverse of LocalToWorld from inverted
// components, without a numerical inverse.
func WorldToLocal(pos, euler, scale Vec3) Mat4 {
	return Scale(scale.Inv()).
		Mul(RotateZ(-euler.Z)).
		Mul(RotateX(-euler.X)).
		Mul(RotateY(-euler.Y)).
		Mul(Translate(pos.Negate()))
}

// ForwardOf returns the facing direction for the given Euler angles.
// With only a yaw this is (-sin y, 0, -cos y).
func ForwardOf(euler Vec3) Vec3 {
	return RotateZ(euler.Z).Mul(RotateX(euler.X)).Mul(RotateY(euler.Y)).ZAxis().Negate()
}
