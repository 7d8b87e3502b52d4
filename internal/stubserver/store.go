package stubserver

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"

	"employee-manager/internal/domain"
	"employee-manager/internal/importer"
)

var ErrNotFound = errors.New("stubserver: employee not found")

// Store keeps employees in memory, in insertion order. Ids start at 1 and
// are never reused.
type Store struct {
	mu        sync.Mutex
	employees []domain.Employee
	nextID    int64
}

func NewStore() *Store {
	return &Store{nextID: 1}
}

func (s *Store) All() []domain.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.employees)
}

func (s *Store) Find(id int64) (domain.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return domain.Employee{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return s.employees[i], nil
}

// Add assigns the next id to in and stores it.
func (s *Store) Add(in domain.EmployeeInput) domain.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := domain.Employee{ID: s.nextID, EmployeeInput: in}
	s.nextID++
	s.employees = append(s.employees, e)
	return e
}

// Update replaces the stored record with the same id, keeping its position.
func (s *Store) Update(e domain.Employee) (domain.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(e.ID)
	if i < 0 {
		return domain.Employee{}, fmt.Errorf("%w: id %d", ErrNotFound, e.ID)
	}
	s.employees[i] = e
	return e, nil
}

func (s *Store) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	s.employees = slices.Delete(s.employees, i, i+1)
	return nil
}

// SeedCSV adds every row of a CSV export or import file. It returns the
// number of records added.
func (s *Store) SeedCSV(r io.Reader) (int, error) {
	rows, err := importer.ReadCSV(r)
	if err != nil {
		return 0, fmt.Errorf("stubserver: seed: %w", err)
	}
	for _, in := range rows {
		s.Add(in)
	}
	return len(rows), nil
}

func (s *Store) index(id int64) int {
	return slices.IndexFunc(s.employees, func(e domain.Employee) bool { return e.ID == id })
}
