package ecs

import (
	"math/bits"
	"strconv"
	"strings"
)

// MaxComponents is the number of distinct component types a registry can hold.
const MaxComponents = 256

const maskWords = MaxComponents / 64

// ComponentID is the bit position assigned to a component type by a ComponentRegistry.
type ComponentID uint8

// ComponentMask is a fixed-size bitset of component IDs.
// Entities carry one describing what is attached, systems carry one describing what they require.
type ComponentMask [maskWords]uint64

// Set enables the bit for id.
func (m *ComponentMask) Set(id ComponentID) {
	m[id>>6] |= 1 << (id & 63)
}

// Clear disables the bit for id.
func (m *ComponentMask) Clear(id ComponentID) {
	m[id>>6] &^= 1 << (id & 63)
}

// Has reports whether the bit for id is set.
func (m ComponentMask) Has(id ComponentID) bool {
	return m[id>>6]&(1<<(id&63)) != 0
}

// Contains reports whether every bit set in sub is also set in m,
// i.e. (m & sub) == sub.
func (m ComponentMask) Contains(sub ComponentMask) bool {
	return m[0]&sub[0] == sub[0] &&
		m[1]&sub[1] == sub[1] &&
		m[2]&sub[2] == sub[2] &&
		m[3]&sub[3] == sub[3]
}

// IsZero reports whether no bits are set.
func (m ComponentMask) IsZero() bool {
	return m == ComponentMask{}
}

// Count returns the number of set bits.
func (m ComponentMask) Count() int {
	n := 0
	for _, w := range m {
		n += bits.OnesCount64(w)
	}
	return n
}

// IDs returns the set component IDs in ascending order.
func (m ComponentMask) IDs() []ComponentID {
	ids := make([]ComponentID, 0, m.Count())
	for word, w := range m {
		for w != 0 {
			bit := bits.TrailingZeros64(w)
			ids = append(ids, ComponentID(word*64+bit))
			w &^= 1 << bit
		}
	}
	return ids
}

func (m ComponentMask) String() string {
	ids := m.IDs()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(int(id))
	}
	return "{" + strings.Join(parts, ",") + "}"
}
