package canvas

import (
	"github.com/samber/lo"

	"github.com/metal-stack/floorplan-api/cmd/floorplan-api/internal/floorplan"
)

// Listener is notified with a snapshot of the collection after every transition.
type Listener func(objects floorplan.Objects)

// Store is the ordered collection of canvas objects of a floorplan. The order
// is the drawing order, objects added last are drawn on top.
//
// A store has a single writer, it is not safe for concurrent use.
type Store struct {
	objects   floorplan.Objects
	listeners []Listener
}

// NewStore returns a store holding copies of the given objects.
func NewStore(objects ...floorplan.Object) *Store {
	return &Store{objects: floorplan.Objects(objects).Clone()}
}

// Subscribe registers a listener for all following transitions.
func (s *Store) Subscribe(l Listener) {
	s.listeners = append(s.listeners, l)
}

// Objects returns a copy of the current collection.
func (s *Store) Objects() floorplan.Objects {
	return s.objects.Clone()
}

// Len returns the amount of objects.
func (s *Store) Len() int {
	return len(s.objects)
}

// Find returns a copy of the object with the given id.
func (s *Store) Find(id string) (floorplan.Object, bool) {
	o, ok := lo.Find(s.objects, func(o floorplan.Object) bool {
		return o.Base().ID == id
	})
	if !ok {
		return nil, false
	}
	return o.Clone(), true
}

// OfType returns copies of all objects of the given type in drawing order.
func (s *Store) OfType(t floorplan.ObjectType) floorplan.Objects {
	return floorplan.Objects(lo.Filter(s.objects, func(o floorplan.Object, _ int) bool {
		return o.Base().Type == t
	})).Clone()
}

// Add appends the object. The single boundary rule is not enforced here.
func (s *Store) Add(o floorplan.Object) {
	s.objects = append(s.objects, o.Clone())
	s.notify()
}

// Remove removes the object with the given id, unknown ids are ignored.
func (s *Store) Remove(id string) {
	s.objects = lo.Reject(s.objects, func(o floorplan.Object, _ int) bool {
		return o.Base().ID == id
	})
	s.notify()
}

// RemoveType removes all objects of the given type.
func (s *Store) RemoveType(t floorplan.ObjectType) {
	s.objects = lo.Reject(s.objects, func(o floorplan.Object, _ int) bool {
		return o.Base().Type == t
	})
	s.notify()
}

// Update merges the patch into the object with the given id. It returns false
// if there is no such object.
func (s *Store) Update(id string, patch floorplan.Patch) bool {
	_, idx, ok := lo.FindIndexOf(s.objects, func(o floorplan.Object) bool {
		return o.Base().ID == id
	})
	if !ok {
		return false
	}

	s.objects[idx] = patch.Apply(s.objects[idx])
	s.notify()
	return true
}

// ReplaceAll replaces the whole collection in one transition.
func (s *Store) ReplaceAll(objects floorplan.Objects) {
	s.objects = objects.Clone()
	s.notify()
}

// Clear removes all objects.
func (s *Store) Clear() {
	s.objects = floorplan.Objects{}
	s.notify()
}

func (s *Store) notify() {
	if len(s.listeners) == 0 {
		return
	}
	snapshot := s.objects.Clone()
	for _, l := range s.listeners {
		l(snapshot)
	}
}
