package debugui

import (
	"reflect"
	"slices"
	"strings"

	"github.com/plus3/scenecs/ecs"
)

type EntityInfo struct {
	ID             ecs.Entity
	Mask           ecs.ComponentMask
	ComponentTypes []string
	Systems        int
}

type SignatureInfo struct {
	Mask           ecs.ComponentMask
	ComponentTypes []string
	EntityCount    int
}

// typeNames returns the component type names of mask in ComponentID order.
func typeNames(registry *ecs.ComponentRegistry, mask ecs.ComponentMask) []string {
	ids := mask.IDs()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = shortTypeName(registry.TypeOf(id))
	}
	return names
}

func shortTypeName(t reflect.Type) string {
	if t == nil {
		return "?"
	}
	return t.String()
}

// collectEntities snapshots every live entity with the number of systems routing it.
func collectEntities(entities *ecs.EntityManager, systems *ecs.SystemManager) []EntityInfo {
	routed := make(map[ecs.Entity]int)
	if systems != nil {
		for _, sys := range systems.Systems() {
			for _, e := range sys.Entities() {
				routed[e]++
			}
		}
	}

	names := make(map[ecs.ComponentMask][]string)
	infos := make([]EntityInfo, 0, entities.Count())
	for e := range entities.Entities() {
		mask := entities.Mask(e)
		types, ok := names[mask]
		if !ok {
			types = typeNames(entities.Registry(), mask)
			names[mask] = types
		}
		infos = append(infos, EntityInfo{
			ID:             e,
			Mask:           mask,
			ComponentTypes: types,
			Systems:        routed[e],
		})
	}
	return infos
}

// collectSignatures groups live entities by component mask.
func collectSignatures(entities *ecs.EntityManager) []SignatureInfo {
	index := make(map[ecs.ComponentMask]int)
	var sigs []SignatureInfo
	for e := range entities.Entities() {
		mask := entities.Mask(e)
		i, ok := index[mask]
		if !ok {
			i = len(sigs)
			index[mask] = i
			sigs = append(sigs, SignatureInfo{
				Mask:           mask,
				ComponentTypes: typeNames(entities.Registry(), mask),
			})
		}
		sigs[i].EntityCount++
	}
	return sigs
}

// matchesFilter reports whether the entity's handle or component names contain text.
func (info EntityInfo) matchesFilter(text string) bool {
	if text == "" {
		return true
	}
	text = strings.ToLower(text)
	if strings.Contains(strings.ToLower(info.ID.String()), text) {
		return true
	}
	return slices.ContainsFunc(info.ComponentTypes, func(name string) bool {
		return strings.Contains(strings.ToLower(name), text)
	})
}
