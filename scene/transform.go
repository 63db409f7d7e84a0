package scene

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/scenecs/ecs"
)

// Transform places an entity in the world. The zero value is an identity transform.
// Parenting is managed through Scene.SetParent; a Transform only keeps a weak
// back-reference to its parent entity. Origin is the local pivot that rotation
// and scale are applied around.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
	Origin   mgl32.Vec3

	parent   ecs.Entity
	parentXf *Transform
	children []ecs.Entity
}

// NewTransform returns a transform at position with identity rotation and unit scale.
func NewTransform(position mgl32.Vec3) Transform {
	return Transform{
		Position: position,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Parent returns the parent entity, or ecs.NilEntity for a root transform.
func (t *Transform) Parent() ecs.Entity {
	return t.parent
}

// Children returns the entities parented to this transform.
func (t *Transform) Children() []ecs.Entity {
	return t.children
}

// Move translates the transform by delta in parent space.
func (t *Transform) Move(delta mgl32.Vec3) {
	t.Position = t.Position.Add(delta)
}

// Rotate applies q after the current rotation.
func (t *Transform) Rotate(q mgl32.Quat) {
	t.Rotation = q.Mul(t.rotation()).Normalize()
}

// LookAt orients the transform so its -Z axis points at target.
func (t *Transform) LookAt(target, up mgl32.Vec3) {
	t.Rotation = mgl32.QuatLookAtV(t.Position, target, up)
}

func (t *Transform) rotation() mgl32.Quat {
	if t.Rotation == (mgl32.Quat{}) {
		return mgl32.QuatIdent()
	}
	return t.Rotation
}

func (t *Transform) scale() mgl32.Vec3 {
	if t.Scale == (mgl32.Vec3{}) {
		return mgl32.Vec3{1, 1, 1}
	}
	return t.Scale
}

// LocalTransform returns the matrix mapping local space into parent space.
func (t *Transform) LocalTransform() mgl32.Mat4 {
	s := t.scale()
	m := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	m = m.Mul4(t.rotation().Mat4())
	m = m.Mul4(mgl32.Scale3D(s.X(), s.Y(), s.Z()))
	if t.Origin != (mgl32.Vec3{}) {
		m = m.Mul4(mgl32.Translate3D(-t.Origin.X(), -t.Origin.Y(), -t.Origin.Z()))
	}
	return m
}

// WorldTransform returns the matrix mapping local space into world space,
// composing every ancestor's local transform.
func (t *Transform) WorldTransform() mgl32.Mat4 {
	m := t.LocalTransform()
	for p := t.parentXf; p != nil; p = p.parentXf {
		m = p.LocalTransform().Mul4(m)
	}
	return m
}

// WorldPosition returns the transform's origin in world space.
func (t *Transform) WorldPosition() mgl32.Vec3 {
	return mgl32.TransformCoordinate(t.Origin, t.WorldTransform())
}

func (t *Transform) addChild(e ecs.Entity) {
	t.children = append(t.children, e)
}

func (t *Transform) removeChild(e ecs.Entity) {
	if i := slices.Index(t.children, e); i >= 0 {
		t.children = slices.Delete(t.children, i, i+1)
	}
}

func (t *Transform) detach() {
	t.parent = ecs.NilEntity
	t.parentXf = nil
}
