// Package authz implements the per-post, per-category permission engine.
// This package follows Clean Architecture with separated concerns:
// - Registry: the closed category / access-level vocabulary
// - Evaluator: pure effective-access computation for an (identity, post) pair
// - Guard predicates: named authorization checks shared by every mutation
//
// Every decision flows through a single EffectiveAccess computation; callers
// never evaluate the four audience categories independently.
package authz

import "errors"

// Category represents an audience segment a post's visibility rules are
// scoped to. Each post carries exactly one access level per category.
type Category string

const (
	CategoryPublic        Category = "public"        // Anyone, including anonymous visitors
	CategoryAuthenticated Category = "authenticated" // Logged-in users outside the author's team
	CategoryTeam          Category = "team"          // Members of the author's team
	CategoryAuthor        Category = "author"        // The post's author
)

// AccessLevel represents the capability granted to a category.
type AccessLevel string

const (
	AccessNone AccessLevel = "none" // No access at all
	AccessRead AccessLevel = "read" // Read-only access
	AccessEdit AccessLevel = "edit" // Read and write access
)

// Validation errors for matrix construction
var (
	ErrUnknownCategory    = errors.New("unknown category")
	ErrUnknownAccessLevel = errors.New("unknown access level")
	ErrMissingCategory    = errors.New("missing category")
	ErrDuplicateCategory  = errors.New("duplicate category")
)

// Categories returns the closed set of audience categories, most specific
// last. The slice is shared; callers must not mutate it.
func Categories() []Category {
	return categories
}

// AccessLevels returns the closed set of access levels in ascending order.
func AccessLevels() []AccessLevel {
	return accessLevels
}

var (
	categories   = []Category{CategoryPublic, CategoryAuthenticated, CategoryTeam, CategoryAuthor}
	accessLevels = []AccessLevel{AccessNone, AccessRead, AccessEdit}
)

// Valid reports whether c is one of the four known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryPublic, CategoryAuthenticated, CategoryTeam, CategoryAuthor:
		return true
	}
	return false
}

// Valid reports whether l is one of the three known access levels.
func (l AccessLevel) Valid() bool {
	switch l {
	case AccessNone, AccessRead, AccessEdit:
		return true
	}
	return false
}

// rank orders access levels: none < read < edit. Unknown levels rank below
// none so a corrupt row can never grant access.
func (l AccessLevel) rank() int {
	switch l {
	case AccessRead:
		return 1
	case AccessEdit:
		return 2
	}
	return 0
}

// AtLeast reports whether l grants at least the capability of min.
func (l AccessLevel) AtLeast(min AccessLevel) bool {
	return l.rank() >= min.rank()
}

// Identity describes the requester as seen by the evaluator. The zero value
// is the anonymous identity.
type Identity struct {
	Authenticated bool
	Admin         bool
	UserID        string
	TeamID        string
}

// Anonymous returns the identity used for requests without a session.
func Anonymous() Identity {
	return Identity{}
}
