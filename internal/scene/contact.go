package scene

import (
	"sort"

	"github.com/tomz197/capylabs/internal/physics"
)

// Step runs the contact pass: it finds every pair of colliding entities
// that touched at some point since the previous step and notifies both sides
// of each pair that was not already in contact at the previous step.
// Entities are swept along a straight line from their previous position, so
// a fast mover cannot skip past another between frames. A pair that stays
// in contact is reported once; it is reported again only after separating.
//
// Listeners may destroy entities or remove listeners while notifications are
// being delivered; a listener removed earlier in the pass is not called.
func (s *Scene) Step() {
	s.collidable = s.collidable[:0]
	for _, e := range s.entities {
		if e.template.Radius() > 0 {
			s.collidable = append(s.collidable, e)
		}
	}
	sort.Slice(s.collidable, func(i, j int) bool { return s.collidable[i].ref < s.collidable[j].ref })

	s.grid.Clear()
	for i, e := range s.collidable {
		s.grid.InsertSpan(e.prev, e.position, i)
	}

	current := make(map[pair]struct{}, len(s.contacts))
	checked := make(map[pair]struct{})
	var began []pair
	for i, e := range s.collidable {
		s.grid.QuerySpan(e.prev, e.position, func(j int) bool {
			if j <= i {
				return false
			}
			o := s.collidable[j]
			p := pair{a: e.ref, b: o.ref}
			if _, seen := checked[p]; seen {
				return false
			}
			checked[p] = struct{}{}

			ra, rb := e.template.Radius(), o.template.Radius()
			if !physics.SweptSpheresOverlap(e.prev, e.position, ra, o.prev, o.position, rb) {
				return false
			}
			// only pairs still touching at the end of the step stay in contact
			if physics.SpheresOverlap(e.position, ra, o.position, rb) {
				current[p] = struct{}{}
			}
			if _, known := s.contacts[p]; !known {
				began = append(began, p)
			}
			return false
		})
	}
	s.contacts = current
	for _, e := range s.entities {
		e.prev = e.position
	}

	sort.Slice(began, func(i, j int) bool {
		if began[i].a != began[j].a {
			return began[i].a < began[j].a
		}
		return began[i].b < began[j].b
	})
	for _, p := range began {
		s.notify(p.a, p.b)
		s.notify(p.b, p.a)
	}
}

// notify delivers a contact to every listener currently registered on ref.
func (s *Scene) notify(ref, other Ref) {
	e, ok := s.entities[ref]
	if !ok {
		return
	}
	snapshot := make([]*listener, len(e.listeners))
	copy(snapshot, e.listeners)
	for _, l := range snapshot {
		if l.removed {
			continue
		}
		l.fn(other)
	}
}
