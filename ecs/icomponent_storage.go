package ecs

import "iter"

// iComponentStorage is an interface for a type-erased component storage.
// Slots are addressed by entity index.
type iComponentStorage interface {
	Set(index int, item any) any
	Delete(index int)
	Get(index int) any
	Has(index int) bool
	Len() int
	Iter() iter.Seq[int]
}
