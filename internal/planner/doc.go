// Package planner handles the decision phase of a three-way sheet merge.
//
// The planner takes the two fragment reports (ancestor→ours and
// ancestor→theirs) and produces a deterministic MergePlan. It detects
// conflicts, chooses which side serves as the base, and lists the states
// whose icons must be copied from the other side.
//
// Key responsibilities:
//   - Detect pixel conflicts (the same state changed on both sides)
//   - Detect metadata conflicts (both sides changed the catalogue)
//   - Choose the base and increment sides
//   - Select the overlay set
package planner
