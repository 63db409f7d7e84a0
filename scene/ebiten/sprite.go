package ebiten

import (
	"cmp"
	"image/color"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/plus3/scenecs/ecs"
	"github.com/plus3/scenecs/scene"
)

type Shape int

const (
	ShapeCircle Shape = iota
	ShapeSquare
)

// Sprite is a flat shape drawn at the entity's world position. Size is the
// diameter in world units before the Transform's scale.
type Sprite struct {
	Color color.RGBA
	Size  float32
	Shape Shape
}

// SpriteSystem draws every entity with a Transform and a Sprite, skipping those
// outside the camera frustum. Farther sprites are drawn first.
type SpriteSystem struct {
	ecs.SystemBase
	scene *scene.Scene

	draws  []spriteDraw
	culled int
}

type spriteDraw struct {
	x, y  float32
	size  float32
	depth float32
	color color.RGBA
	shape Shape
}

func NewSpriteSystem(s *scene.Scene) *SpriteSystem {
	sys := &SpriteSystem{scene: s}
	ecs.RequireComponent[scene.Transform](&sys.SystemBase)
	ecs.RequireComponent[Sprite](&sys.SystemBase)
	return sys
}

// Drawn returns how many sprites the last Render drew.
func (s *SpriteSystem) Drawn() int {
	return len(s.draws)
}

// Culled returns how many sprites the last Render skipped as not visible.
func (s *SpriteSystem) Culled() int {
	return s.culled
}

func (s *SpriteSystem) Render(target scene.RenderTarget, camera *scene.Camera) {
	img := imageOf(target)
	if img == nil || camera == nil {
		return
	}
	width, height := target.Size()
	s.collect(camera, width, height)

	for _, d := range s.draws {
		switch d.shape {
		case ShapeCircle:
			vector.DrawFilledCircle(img, d.x, d.y, d.size/2, d.color, true)
		default:
			vector.DrawFilledRect(img, d.x-d.size/2, d.y-d.size/2, d.size, d.size, d.color, true)
		}
	}
}

// collect projects the visible sprites into screen space.
func (s *SpriteSystem) collect(camera *scene.Camera, width, height int) {
	s.draws = s.draws[:0]
	s.culled = 0
	halfW, halfH := float32(width)/2, float32(height)/2
	focal := camera.Projection.At(1, 1)

	for _, e := range s.Entities() {
		tr := scene.GetComponent[scene.Transform](s.scene, e)
		sp := scene.GetComponent[Sprite](s.scene, e)

		pos := tr.WorldPosition()
		radius := sp.Size / 2 * maxScale(tr.WorldTransform())
		if !camera.Frustum.IntersectsSphere(pos, radius) {
			s.culled++
			continue
		}

		clip := camera.ViewProjection.Mul4x1(pos.Vec4(1))
		w := clip.W()
		if w <= 0 {
			s.culled++
			continue
		}
		s.draws = append(s.draws, spriteDraw{
			x:     (clip.X()/w + 1) * halfW,
			y:     (1 - clip.Y()/w) * halfH,
			size:  2 * radius * focal * halfH / w,
			depth: w,
			color: sp.Color,
			shape: sp.Shape,
		})
	}

	slices.SortStableFunc(s.draws, func(a, b spriteDraw) int {
		return cmp.Compare(b.depth, a.depth)
	})
}

func maxScale(m mgl32.Mat4) float32 {
	return max(m.Col(0).Vec3().Len(), m.Col(1).Vec3().Len(), m.Col(2).Vec3().Len())
}

var _ scene.Renderer = (*SpriteSystem)(nil)

// DrawImage is a convenience for renderers that blit a whole image to a target.
func DrawImage(target scene.RenderTarget, img *ebiten.Image, opts *ebiten.DrawImageOptions) {
	if dst := imageOf(target); dst != nil {
		dst.DrawImage(img, opts)
	}
}
