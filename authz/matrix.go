package authz

import "fmt"

// Matrix is the canonical in-memory form of a post's permission assignment:
// one access level per audience category. Request payload shapes are
// translated into a Matrix at the boundary and never leak further in.
type Matrix map[Category]AccessLevel

// Entry is the persisted form of one matrix row.
type Entry struct {
	Category    Category    `json:"category"`
	AccessLevel AccessLevel `json:"access_level"`
}

// Validate checks that m covers all four categories exactly once with known
// access levels. A matrix that fails validation must never be persisted.
func (m Matrix) Validate() error {
	for category, level := range m {
		if !category.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
		}
		if !level.Valid() {
			return fmt.Errorf("%w: %q for category %q", ErrUnknownAccessLevel, level, category)
		}
	}
	for _, category := range Categories() {
		if _, ok := m[category]; !ok {
			return fmt.Errorf("%w: %q", ErrMissingCategory, category)
		}
	}
	return nil
}

// NewMatrix builds a validated Matrix from persisted or submitted entries.
// Duplicate categories are rejected rather than last-write-wins, so a payload
// carrying the same category twice surfaces as a validation error.
func NewMatrix(entries []Entry) (Matrix, error) {
	m := make(Matrix, len(Categories()))
	for _, e := range entries {
		if _, ok := m[e.Category]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCategory, e.Category)
		}
		m[e.Category] = e.AccessLevel
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Entries returns the matrix rows in registry order, for persistence and
// serialization.
func (m Matrix) Entries() []Entry {
	entries := make([]Entry, 0, len(Categories()))
	for _, category := range Categories() {
		entries = append(entries, Entry{Category: category, AccessLevel: m[category]})
	}
	return entries
}

// Clone returns an independent copy of m.
func (m Matrix) Clone() Matrix {
	clone := make(Matrix, len(m))
	for category, level := range m {
		clone[category] = level
	}
	return clone
}
