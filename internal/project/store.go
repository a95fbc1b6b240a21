package project

import (
	"fmt"
)

// Store is an insertion-ordered in-memory collection of projects.
type Store struct {
	projects map[int]*Project // id -> project
	order    []int            // ids in insertion order
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		projects: make(map[int]*Project),
	}
}

// Insert adds p under id. The store never overwrites an existing entry.
func (s *Store) Insert(id int, p Project) error {
	if id <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidProjectID, id)
	}
	if _, ok := s.projects[id]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateID, id)
	}

	s.projects[id] = &p
	s.order = append(s.order, id)
	return nil
}

// Get returns a copy of the project stored under id.
func (s *Store) Get(id int) (Project, bool) {
	p, ok := s.projects[id]
	if !ok {
		return Project{}, false
	}
	return *p, true
}

// Update applies fn to the project stored under id.
func (s *Store) Update(id int, fn func(*Project)) error {
	p, ok := s.projects[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrProjectNotFound, id)
	}
	fn(p)
	return nil
}

// Remove deletes the project stored under id.
func (s *Store) Remove(id int) error {
	if _, ok := s.projects[id]; !ok {
		return fmt.Errorf("%w: %d", ErrProjectNotFound, id)
	}

	delete(s.projects, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Entries returns copies of all projects in insertion order.
func (s *Store) Entries() []Entry {
	out := make([]Entry, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, Entry{ID: id, Project: *s.projects[id]})
	}
	return out
}

// Len returns the number of live projects.
func (s *Store) Len() int {
	return len(s.order)
}

// MaxID returns the highest live ID, or 0 when the store is empty.
func (s *Store) MaxID() int {
	highest := 0
	for _, id := range s.order {
		if id > highest {
			highest = id
		}
	}
	return highest
}

// Reset replaces the store contents with entries.
// A repeated ID keeps its first position and takes the last entry's fields.
func (s *Store) Reset(entries []Entry) {
	s.projects = make(map[int]*Project, len(entries))
	s.order = make([]int, 0, len(entries))
	for _, e := range entries {
		p := e.Project
		if _, ok := s.projects[e.ID]; !ok {
			s.order = append(s.order, e.ID)
		}
		s.projects[e.ID] = &p
	}
}
