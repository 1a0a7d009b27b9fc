// Package camera provides the polar orbit camera used by the viewer.
package camera

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// ElevationGuard keeps elevation away from the poles, where the look-at
// basis degenerates against the fixed up vector.
const ElevationGuard = 0.1

// Elevation limits, open interval (-pi/2, pi/2) shrunk by ElevationGuard.
const (
	MinElevation = -gomath.Pi/2 + ElevationGuard
	MaxElevation = gomath.Pi/2 - ElevationGuard
)

// Initial pose restored by Reset.
var (
	InitialEye    = mgl32.Vec3{20, 0, 0}
	InitialLookAt = mgl32.Vec3{0, 0, 0}
	InitialUp     = mgl32.Vec3{0, 1, 0}
)

// Spherical is a position on a sphere around the orbit center.
type Spherical struct {
	Radius    float32
	Azimuth   float32 // radians in the XZ plane, unbounded
	Elevation float32 // radians above the XZ plane, clamped
}

// Cartesian converts the coordinate to a point.
func (s Spherical) Cartesian() mgl32.Vec3 {
	az := float64(s.Azimuth)
	el := float64(s.Elevation)
	r := float64(s.Radius)
	return mgl32.Vec3{
		float32(r * gomath.Cos(az) * gomath.Cos(el)),
		float32(r * gomath.Sin(el)),
		float32(r * gomath.Sin(az) * gomath.Cos(el)),
	}
}

// Camera orbits the world origin in spherical coordinates.
// The view matrix is derived from eye, look and up on every change.
type Camera struct {
	sphere Spherical
	eye    mgl32.Vec3
	look   mgl32.Vec3
	up     mgl32.Vec3
	view   mgl32.Mat4
}

// New returns a camera in its initial pose.
func New() *Camera {
	c := &Camera{}
	c.Reset()
	return c
}

// Reset restores the initial pose.
func (c *Camera) Reset() {
	c.eye = InitialEye
	c.look = InitialLookAt
	c.up = InitialUp
	c.sphere = Spherical{Radius: c.eye.Len()}
	c.view = mgl32.LookAtV(c.eye, c.look.Mul(-1), c.up)
}

// Update applies navigation deltas and, when focus is non-nil, re-targets
// the camera onto it.
//
// The re-target is additive: the eye is shifted by focus and the radius
// taken from the shifted eye before the eye is rebuilt from the sphere, and
// the look target becomes -focus. With a model at the origin this is a no-op.
func (c *Camera) Update(azimuthDelta, elevationDelta float32, focus *mgl32.Vec3) {
	c.sphere.Elevation = mgl32.Clamp(c.sphere.Elevation+elevationDelta, MinElevation, MaxElevation)
	c.sphere.Azimuth += azimuthDelta

	if focus != nil {
		c.look = focus.Mul(-1)
		c.eye = c.eye.Add(*focus)
		c.sphere.Radius = c.eye.Sub(*focus).Len()
	}

	c.eye = c.sphere.Cartesian()
	c.view = mgl32.LookAtV(c.eye, c.look, c.up)
}

// ViewMatrix returns the current view transform without recomputing it.
func (c *Camera) ViewMatrix() mgl32.Mat4 { return c.view }

// Eye returns the camera position.
func (c *Camera) Eye() mgl32.Vec3 { return c.eye }

// LookTarget returns the point the camera aims at.
func (c *Camera) LookTarget() mgl32.Vec3 { return c.look }

// Up returns the up vector.
func (c *Camera) Up() mgl32.Vec3 { return c.up }

// Sphere returns the spherical coordinate.
func (c *Camera) Sphere() Spherical { return c.sphere }
