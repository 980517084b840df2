// Package ordering maintains the user-defined display order of tasks and
// reconciles it against server refreshes.
package ordering

// Direction of an adjacent swap.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

type dragSession struct {
	active       bool
	draggedIndex int
	overIndex    int
}

// Store holds an ordered list of stable task keys ("projectID:taskID"). The
// order is seeded once from the first non-empty fetch and never re-seeded;
// later fetches are reconciled against it.
type Store struct {
	keys    []string
	seeded  bool
	drag    dragSession
	pending []string
	hasPend bool
}

// NewStore returns an empty, unseeded store.
func NewStore() *Store {
	return &Store{}
}

// Keys returns the current display order.
func (s *Store) Keys() []string {
	return append([]string(nil), s.keys...)
}

// Seeded reports whether the store has taken its initial order.
func (s *Store) Seeded() bool {
	return s.seeded
}

// Reconcile folds a fetched key list into the display order. The first
// non-empty fetch seeds the order verbatim. Afterwards: keys still present
// keep their relative order, vanished keys are dropped silently, and new keys
// are appended in fetch order. A fetch arriving mid-drag is parked and
// applied when the drag ends.
func (s *Store) Reconcile(fetched []string) {
	if s.drag.active {
		s.pending = append([]string(nil), fetched...)
		s.hasPend = true
		return
	}
	s.reconcile(fetched)
}

func (s *Store) reconcile(fetched []string) {
	if !s.seeded {
		if len(fetched) == 0 {
			return
		}
		s.keys = append([]string(nil), fetched...)
		s.seeded = true
		return
	}

	present := make(map[string]bool, len(fetched))
	for _, key := range fetched {
		present[key] = true
	}

	next := make([]string, 0, len(fetched))
	known := make(map[string]bool, len(s.keys))
	for _, key := range s.keys {
		if present[key] {
			next = append(next, key)
			known[key] = true
		}
	}
	for _, key := range fetched {
		if !known[key] {
			next = append(next, key)
			known[key] = true
		}
	}
	s.keys = next
}

// Replace installs a full new order, as committed by a finished drag.
func (s *Store) Replace(keys []string) {
	s.keys = append([]string(nil), keys...)
	s.seeded = true
}

// Swap moves the key at index one step in the given direction. Out-of-range
// moves are no-ops.
func (s *Store) Swap(index int, dir Direction) {
	switch dir {
	case Up:
		if index <= 0 || index >= len(s.keys) {
			return
		}
		s.keys[index-1], s.keys[index] = s.keys[index], s.keys[index-1]
	case Down:
		if index < 0 || index >= len(s.keys)-1 {
			return
		}
		s.keys[index], s.keys[index+1] = s.keys[index+1], s.keys[index]
	}
}

// BeginDrag starts a drag session for the key at index.
func (s *Store) BeginDrag(index int) {
	if index < 0 || index >= len(s.keys) {
		return
	}
	s.drag = dragSession{active: true, draggedIndex: index, overIndex: -1}
}

// DragOver records the index currently hovered by the drag.
func (s *Store) DragOver(index int) {
	if !s.drag.active {
		return
	}
	if index < 0 || index >= len(s.keys) {
		return
	}
	s.drag.overIndex = index
}

// Dragging reports whether a drag session is active, and the source and
// hover indices when it is.
func (s *Store) Dragging() (source, over int, active bool) {
	return s.drag.draggedIndex, s.drag.overIndex, s.drag.active
}

// Drop commits the drag as a remove-then-insert at the hover index. Dropping
// on the source index, or with no hover recorded, is a no-op. Any reconcile
// parked during the drag is applied afterwards.
func (s *Store) Drop() {
	if s.drag.active && s.drag.overIndex >= 0 && s.drag.overIndex != s.drag.draggedIndex {
		from, to := s.drag.draggedIndex, s.drag.overIndex
		key := s.keys[from]
		rest := append(append([]string(nil), s.keys[:from]...), s.keys[from+1:]...)
		next := make([]string, 0, len(s.keys))
		next = append(next, rest[:to]...)
		next = append(next, key)
		next = append(next, rest[to:]...)
		s.keys = next
	}
	s.endDrag()
}

// CancelDrag abandons the drag session without reordering.
func (s *Store) CancelDrag() {
	if !s.drag.active {
		return
	}
	s.endDrag()
}

func (s *Store) endDrag() {
	s.drag = dragSession{}
	if s.hasPend {
		pending := s.pending
		s.pending = nil
		s.hasPend = false
		s.reconcile(pending)
	}
}

// SortRefs orders keyed items by the store's display order. Items whose key
// the store does not know keep their input order after the known ones.
func SortRefs[T any](items []T, keyOf func(T) string, order []string) []T {
	rank := make(map[string]int, len(order))
	for i, key := range order {
		rank[key] = i
	}
	known := make([]T, 0, len(items))
	unknown := make([]T, 0)
	for _, item := range items {
		if _, ok := rank[keyOf(item)]; ok {
			known = append(known, item)
		} else {
			unknown = append(unknown, item)
		}
	}
	for i := 1; i < len(known); i++ {
		for j := i; j > 0 && rank[keyOf(known[j-1])] > rank[keyOf(known[j])]; j-- {
			known[j-1], known[j] = known[j], known[j-1]
		}
	}
	return append(known, unknown...)
}
