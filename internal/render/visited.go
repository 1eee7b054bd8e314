package render

import (
	"sync"

	"github.com/Alb-O/ripdoc/internal/rustdoc"
)

// VisitedSet is the cross-call shared mutable set handle described in §5 and
// §9: a mutex-protected set of item ids, scoped to one skelebuild render
// group, ensuring an item is never re-emitted within that group while
// remaining referenceable as context.
type VisitedSet struct {
	mu   sync.Mutex
	seen map[rustdoc.ItemID]bool
}

// NewVisitedSet constructs an empty shared visited set.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{seen: map[rustdoc.ItemID]bool{}}
}

// Contains reports whether id has already been rendered in this group.
func (v *VisitedSet) Contains(id rustdoc.ItemID) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.seen[id]
}

// Insert records id as rendered, returning true if it was newly inserted.
func (v *VisitedSet) Insert(id rustdoc.ItemID) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.seen[id] {
		return false
	}
	v.seen[id] = true
	return true
}
