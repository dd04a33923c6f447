// Package fragment classifies how each state of a sheet changed between two
// versions.
//
// A state is the unit of change ("fragment"). Classify compares metadata
// first and only falls back to pixel comparison when the metadata still
// allows the rectangles of both versions to be matched one to one.
package fragment

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Status is the change classification of one state.
type Status int

const (
	Unchanged Status = iota
	Added
	Removed
	ChangedOffsetOnly
	ChangedMeta
	ChangedPixels
)

var statusNames = map[Status]string{
	Unchanged:         "unchanged",
	Added:             "added",
	Removed:           "removed",
	ChangedOffsetOnly: "offset-only",
	ChangedMeta:       "meta",
	ChangedPixels:     "pixels",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// MarshalJSON encodes the status by name.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a status name.
func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for k, v := range statusNames {
		if v == name {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown fragment status %q", name)
}

// IsMeaningfulChange reports whether the status is worth showing to a user.
func (s Status) IsMeaningfulChange() bool {
	return s != Unchanged && s != ChangedOffsetOnly
}

// HasMetaChange reports whether the state's catalogue entry changed.
// Additions and removals count as metadata changes.
func (s Status) HasMetaChange() bool {
	return s != Unchanged && s != ChangedPixels
}

// HasPixelChange reports whether the state's pixels may have changed.
func (s Status) HasPixelChange() bool {
	return s != Unchanged && s != ChangedOffsetOnly
}

// promote upgrades a preliminary status after a pixel mismatch.
func (s Status) promote() Status {
	switch s {
	case Unchanged:
		return ChangedPixels
	case ChangedOffsetOnly:
		return ChangedMeta
	default:
		// Only preliminary statuses reach pixel comparison.
		panic(fmt.Sprintf("fragment: cannot promote final status %s", s))
	}
}

// Report maps state names to their status for one comparison.
type Report map[string]Status

// Entry is one named status, used for ordered display.
type Entry struct {
	State  string `json:"state"`
	Status Status `json:"status"`
}

// Get returns the status of name, treating absent names as unchanged.
func (r Report) Get(name string) Status {
	if s, ok := r[name]; ok {
		return s
	}
	return Unchanged
}

// Names returns the report keys sorted.
func (r Report) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Meaningful returns the meaningful changes sorted by state name.
func (r Report) Meaningful() []Entry {
	entries := make([]Entry, 0)
	for _, name := range r.Names() {
		if r[name].IsMeaningfulChange() {
			entries = append(entries, Entry{State: name, Status: r[name]})
		}
	}
	return entries
}

// AnyMetaChange reports whether any state in the report changed metadata.
func (r Report) AnyMetaChange() bool {
	for _, s := range r {
		if s.HasMetaChange() {
			return true
		}
	}
	return false
}

// Filter returns the sorted names whose status satisfies keep.
func (r Report) Filter(keep func(Status) bool) []string {
	names := make([]string, 0, len(r))
	for _, name := range r.Names() {
		if keep(r[name]) {
			names = append(names, name)
		}
	}
	return names
}
