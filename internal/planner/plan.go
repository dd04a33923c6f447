package planner

import "github.com/danieljhkim/iconmerge/internal/fragment"

// Side identifies one of the two divergent versions.
type Side string

// Side constants
const (
	Ours   Side = "ours"
	Theirs Side = "theirs"
)

// Other returns the opposite side.
func (s Side) Other() Side {
	if s == Ours {
		return Theirs
	}
	return Ours
}

// ConflictKind classifies why a merge cannot proceed.
type ConflictKind string

// Conflict kind constants
const (
	PixelConflict ConflictKind = "pixel-conflict"
	MetaConflict  ConflictKind = "meta-conflict"
)

// Conflict represents a conflict detected during planning.
type Conflict struct {
	// Kind is the conflict category
	Kind ConflictKind `json:"kind"`

	// State is the conflicting state name (empty for file-wide metadata conflicts)
	State string `json:"state,omitempty"`

	// Reason is a human-readable explanation of the conflict
	Reason string `json:"reason"`

	// Ours and Theirs are the statuses each side reported for State
	Ours   fragment.Status `json:"ours"`
	Theirs fragment.Status `json:"theirs"`
}

// MergePlan represents the decision for one file.
type MergePlan struct {
	// Base is the side whose grid and catalogue are kept
	Base Side `json:"base,omitempty"`

	// Increment is the side whose icons are copied onto the base
	Increment Side `json:"increment,omitempty"`

	// Overlay is the ordered list of states to copy from the increment
	Overlay []string `json:"overlay,omitempty"`

	// Conflicts is a list of detected conflicts (empty if mergeable)
	Conflicts []Conflict `json:"conflicts,omitempty"`
}

// NewMergePlan creates a new empty MergePlan.
func NewMergePlan() *MergePlan {
	return &MergePlan{
		Overlay:   []string{},
		Conflicts: []Conflict{},
	}
}

// HasConflicts returns true if the plan has any conflicts.
func (p *MergePlan) HasConflicts() bool {
	return len(p.Conflicts) > 0
}

// Kind returns the kind of the first conflict, or "" when mergeable.
func (p *MergePlan) Kind() ConflictKind {
	if !p.HasConflicts() {
		return ""
	}
	return p.Conflicts[0].Kind
}

// AddConflict adds a conflict to the plan.
func (p *MergePlan) AddConflict(conflict Conflict) {
	p.Conflicts = append(p.Conflicts, conflict)
}
