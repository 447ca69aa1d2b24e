package common

import (
	"github.com/chewxy/math32"
)

// Ray is a half-line in world space. Direction is expected to be unit length.
type Ray struct {
	Origin    [3]float32
	Direction [3]float32
}

// At returns the point Origin + t*Direction.
func (r Ray) At(t float32) [3]float32 {
	return [3]float32{
		r.Origin[0] + r.Direction[0]*t,
		r.Origin[1] + r.Direction[1]*t,
		r.Origin[2] + r.Direction[2]*t,
	}
}

// IntersectZRect intersects the ray with an axis-aligned rectangle lying in the plane
// z = center.z. The rectangle spans halfW on either side of center.x and halfH on either
// side of center.y.
//
// Parameters:
//   - center: rectangle center in world space
//   - halfW: half of the rectangle width
//   - halfH: half of the rectangle height
//
// Returns:
//   - float32: distance along the ray to the hit point
//   - bool: true if the ray hits the rectangle in front of its origin
func (r Ray) IntersectZRect(center [3]float32, halfW, halfH float32) (float32, bool) {
	if math32.Abs(r.Direction[2]) < 1e-8 {
		return 0, false
	}
	t := (center[2] - r.Origin[2]) / r.Direction[2]
	if t < 0 {
		return 0, false
	}
	hit := r.At(t)
	if math32.Abs(hit[0]-center[0]) > halfW || math32.Abs(hit[1]-center[1]) > halfH {
		return 0, false
	}
	return t, true
}
