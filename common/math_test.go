package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEaseInOutQuad(t *testing.T) {
	tests := []struct {
		in   float32
		want float32
	}{
		{-1, 0},
		{0, 0},
		{0.25, 0.125},
		{0.5, 0.5},
		{0.75, 0.875},
		{0.8, 0.92},
		{1, 1},
		{2, 1},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, EaseInOutQuad(tt.in), 1e-5, "ease(%v)", tt.in)
	}
}

func TestEaseInOutQuadMonotonic(t *testing.T) {
	prev := EaseInOutQuad(0)
	for i := 1; i <= 1000; i++ {
		v := EaseInOutQuad(float32(i) / 1000)
		assert.GreaterOrEqual(t, v, prev)
		prev = v
	}
}

func TestNormalize2(t *testing.T) {
	assert.Equal(t, [2]float32{0, 0}, Normalize2(0, 0))

	n := Normalize2(3, 4)
	assert.InDelta(t, 0.6, n[0], 1e-6)
	assert.InDelta(t, 0.8, n[1], 1e-6)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, float32(1), Clamp(5, -1, 1))
	assert.Equal(t, float32(-1), Clamp(-5, -1, 1))
	assert.Equal(t, float32(0.5), Clamp(0.5, -1, 1))
}

func TestInvert4RoundTrip(t *testing.T) {
	var view, proj, vp, inv, ident [16]float32
	LookAt(view[:], [3]float32{1, 2, 60}, [3]float32{0, 0, -940}, [3]float32{0, 1, 0})
	Perspective(proj[:], DegToRad(7), 16.0/9.0, 1, 2000)
	Mul4(vp[:], proj[:], view[:])

	require.True(t, Invert4(inv[:], vp[:]))
	Mul4(ident[:], vp[:], inv[:])
	for i := range 16 {
		want := float32(0)
		if i%5 == 0 {
			want = 1
		}
		assert.InDelta(t, want, ident[i], 1e-3, "element %d", i)
	}
}

func TestInvert4Singular(t *testing.T) {
	var zero, out [16]float32
	assert.False(t, Invert4(out[:], zero[:]))
}

func TestTransformPointProjectsCenterToOrigin(t *testing.T) {
	var view, proj, vp [16]float32
	LookAt(view[:], [3]float32{0, 0, 50}, [3]float32{0, 0, -950}, [3]float32{0, 1, 0})
	Perspective(proj[:], DegToRad(7), 1, 1, 2000)
	Mul4(vp[:], proj[:], view[:])

	p := TransformPoint(vp[:], [3]float32{0, 0, -100})
	assert.InDelta(t, 0, p[0], 1e-5)
	assert.InDelta(t, 0, p[1], 1e-5)
	assert.Greater(t, p[2], float32(0))
	assert.Less(t, p[2], float32(1))
}

func TestBuildModelMatrix(t *testing.T) {
	var m [16]float32
	BuildModelMatrix(m[:], [3]float32{1, 2, 3}, [3]float32{4, 5, 1})
	p := TransformPoint(m[:], [3]float32{0.5, 0.5, 0})
	assert.Equal(t, [3]float32{3, 4.5, 3}, p)
}

func TestRayIntersectZRect(t *testing.T) {
	r := Ray{Origin: [3]float32{0, 0, 10}, Direction: [3]float32{0, 0, -1}}

	dist, ok := r.IntersectZRect([3]float32{0, 0, -5}, 2.5, 2.5)
	require.True(t, ok)
	assert.InDelta(t, 15, dist, 1e-6)

	_, ok = r.IntersectZRect([3]float32{10, 0, -5}, 2.5, 2.5)
	assert.False(t, ok)

	// behind the origin
	_, ok = r.IntersectZRect([3]float32{0, 0, 20}, 2.5, 2.5)
	assert.False(t, ok)

	// parallel to the plane
	parallel := Ray{Origin: [3]float32{0, 0, 0}, Direction: [3]float32{1, 0, 0}}
	_, ok = parallel.IntersectZRect([3]float32{0, 0, 0}, 2.5, 2.5)
	assert.False(t, ok)
}

func TestFrustumContainsSphere(t *testing.T) {
	var view, proj, vp [16]float32
	LookAt(view[:], [3]float32{0, 0, 0}, [3]float32{0, 0, -1}, [3]float32{0, 1, 0})
	Perspective(proj[:], DegToRad(60), 1, 1, 100)
	Mul4(vp[:], proj[:], view[:])
	f := ExtractFrustumFromMatrix(vp[:])

	assert.True(t, f.ContainsSphere([3]float32{0, 0, -50}, 1))
	assert.False(t, f.ContainsSphere([3]float32{0, 0, 50}, 1), "behind the camera")
	assert.False(t, f.ContainsSphere([3]float32{0, 0, -500}, 1), "beyond the far plane")
	assert.False(t, f.ContainsSphere([3]float32{500, 0, -50}, 1), "off to the side")
}
