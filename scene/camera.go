package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Camera describes how the active view is projected. The Scene refreshes View,
// ViewProjection and Frustum once per Simulate from the camera entity's Transform.
type Camera struct {
	Projection     mgl32.Mat4
	View           mgl32.Mat4
	ViewProjection mgl32.Mat4
	Frustum        Frustum

	perspective bool
	fovY        float32
	near, far   float32
}

// NewPerspectiveCamera returns a camera with a perspective projection.
// fovY is in degrees.
func NewPerspectiveCamera(fovY, aspect, near, far float32) Camera {
	var c Camera
	c.SetPerspective(fovY, aspect, near, far)
	return c
}

// SetPerspective sets a perspective projection. fovY is in degrees.
func (c *Camera) SetPerspective(fovY, aspect, near, far float32) {
	c.perspective = true
	c.fovY = fovY
	c.near, c.far = near, far
	c.Projection = mgl32.Perspective(mgl32.DegToRad(fovY), aspect, near, far)
}

// SetOrthographic sets an orthographic projection.
func (c *Camera) SetOrthographic(left, right, bottom, top, near, far float32) {
	c.perspective = false
	c.near, c.far = near, far
	c.Projection = mgl32.Ortho(left, right, bottom, top, near, far)
}

// SetAspect recomputes a perspective projection for a new aspect ratio.
// Orthographic projections are left unchanged.
func (c *Camera) SetAspect(aspect float32) {
	if !c.perspective || aspect <= 0 {
		return
	}
	c.Projection = mgl32.Perspective(mgl32.DegToRad(c.fovY), aspect, c.near, c.far)
}

// update recomputes the view matrices and frustum from the camera's world transform.
func (c *Camera) update(world mgl32.Mat4) {
	c.View = world.Inv()
	c.ViewProjection = c.Projection.Mul4(c.View)
	c.Frustum = ExtractFrustum(c.ViewProjection)
}

// Plane is a plane in Hessian normal form: points p with Normal·p + D = 0.
type Plane struct {
	Normal mgl32.Vec3
	D      float32
}

// Distance returns the signed distance from the plane to p.
// Positive values lie on the side the normal points to.
func (p Plane) Distance(point mgl32.Vec3) float32 {
	return p.Normal.Dot(point) + p.D
}

func (p Plane) normalize() Plane {
	l := p.Normal.Len()
	if l == 0 {
		return p
	}
	return Plane{Normal: p.Normal.Mul(1 / l), D: p.D / l}
}

// Frustum planes, all facing inward.
const (
	PlaneLeft = iota
	PlaneRight
	PlaneBottom
	PlaneTop
	PlaneNear
	PlaneFar
)

// Frustum holds the six clip planes of a view volume.
type Frustum [6]Plane

// ExtractFrustum derives the clip planes of m, a projection*view matrix.
// Each plane is normalized so distances are in world units.
func ExtractFrustum(m mgl32.Mat4) Frustum {
	r0, r1, r2, r3 := m.Row(0), m.Row(1), m.Row(2), m.Row(3)

	planeOf := func(v mgl32.Vec4) Plane {
		return Plane{Normal: v.Vec3(), D: v.W()}.normalize()
	}

	var f Frustum
	f[PlaneLeft] = planeOf(r3.Add(r0))
	f[PlaneRight] = planeOf(r3.Sub(r0))
	f[PlaneBottom] = planeOf(r3.Add(r1))
	f[PlaneTop] = planeOf(r3.Sub(r1))
	f[PlaneNear] = planeOf(r3.Add(r2))
	f[PlaneFar] = planeOf(r3.Sub(r2))
	return f
}

// ContainsPoint reports whether p lies inside or on the frustum.
func (f *Frustum) ContainsPoint(p mgl32.Vec3) bool {
	for _, plane := range f {
		if plane.Distance(p) < 0 {
			return false
		}
	}
	return true
}

// IntersectsSphere reports whether a sphere overlaps the frustum.
// It may report true for spheres just outside a frustum corner.
func (f *Frustum) IntersectsSphere(center mgl32.Vec3, radius float32) bool {
	for _, plane := range f {
		if plane.Distance(center) < -radius {
			return false
		}
	}
	return true
}
