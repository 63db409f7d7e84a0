package main

import (
	"fmt"
	"image/color"

	"github.com/plus3/scenecs/ecs"
	"github.com/plus3/scenecs/scene"
	sceneebiten "github.com/plus3/scenecs/scene/ebiten"
	"gopkg.in/yaml.v3"
)

type spriteSpec struct {
	Color [4]uint8 `yaml:"color"`
	Size  float32  `yaml:"size"`
	Shape string   `yaml:"shape"`
}

// spriteHook attaches the "sprite" prefab component.
func spriteHook(s *scene.Scene, e ecs.Entity, node *yaml.Node) error {
	sp, err := decodeSprite(node)
	if err != nil {
		return err
	}
	scene.AddComponent(s, e, sp)
	return nil
}

func decodeSprite(node *yaml.Node) (sceneebiten.Sprite, error) {
	spec := spriteSpec{Color: [4]uint8{255, 255, 255, 255}, Size: 1, Shape: "circle"}
	if err := node.Decode(&spec); err != nil {
		return sceneebiten.Sprite{}, err
	}
	if spec.Size <= 0 {
		return sceneebiten.Sprite{}, fmt.Errorf("sprite size must be positive, got %g", spec.Size)
	}

	sp := sceneebiten.Sprite{
		Color: color.RGBA{spec.Color[0], spec.Color[1], spec.Color[2], spec.Color[3]},
		Size:  spec.Size,
	}
	switch spec.Shape {
	case "circle":
		sp.Shape = sceneebiten.ShapeCircle
	case "square":
		sp.Shape = sceneebiten.ShapeSquare
	default:
		return sceneebiten.Sprite{}, fmt.Errorf("unknown sprite shape %q", spec.Shape)
	}
	return sp, nil
}
