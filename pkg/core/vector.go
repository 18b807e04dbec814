// pkg/core/vector.go
package core

import "github.com/go-gl/mathgl/mgl64"

// Vector3 is a world-space position or direction in metres.
// Y is up; the floor plane is Y=0.
type Vector3 struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
	Z float64 `json:"z" msgpack:"z"`
}

// Vec returns v as an mgl64 vector for arithmetic.
func (v Vector3) Vec() mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// VectorFrom converts an mgl64 vector back to the wire type.
func VectorFrom(v mgl64.Vec3) Vector3 {
	return Vector3{X: v[0], Y: v[1], Z: v[2]}
}
