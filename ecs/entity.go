package ecs

import "fmt"

// Entity is an opaque handle into an EntityManager.
// The lower 24 bits hold the slot index, the next 24 bits the slot generation
// and the top 16 bits the tag of the manager that issued the handle.
type Entity uint64

// NilEntity is never issued by a manager.
const NilEntity Entity = 0

const (
	indexBits = 24
	indexMask = 1<<indexBits - 1

	// A slot's generation wraps back to 1 after 2^24 recycles, at which point a
	// handle that old would validate again.
	generationBits  = 24
	generationMask  = 1<<generationBits - 1
	generationShift = indexBits

	ownerShift = indexBits + generationBits
)

// MaxEntities is the number of entity slots a manager can hold.
const MaxEntities = 1 << indexBits

// NewEntity packs an index, generation and owner tag into a handle.
func NewEntity(index uint32, generation uint32, owner uint16) Entity {
	return Entity(uint64(owner)<<ownerShift |
		uint64(generation&generationMask)<<generationShift |
		uint64(index&indexMask))
}

// Index extracts the storage slot index
func (e Entity) Index() uint32 {
	return uint32(e & indexMask)
}

// Generation extracts the slot generation the handle was issued with
func (e Entity) Generation() uint32 {
	return uint32(e>>generationShift) & generationMask
}

// Owner extracts the tag of the issuing manager
func (e Entity) Owner() uint16 {
	return uint16(e >> ownerShift)
}

func (e Entity) IsNil() bool {
	return e == NilEntity
}

func (e Entity) String() string {
	if e.IsNil() {
		return "Entity(nil)"
	}
	return fmt.Sprintf("Entity(%d:%d@%d)", e.Index(), e.Generation(), e.Owner())
}
