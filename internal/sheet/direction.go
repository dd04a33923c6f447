package sheet

import (
	"encoding/json"
	"fmt"
)

// Direction is a facing within a state. Values follow the storage order of
// icons inside a state.
type Direction int

const (
	South Direction = iota
	North
	East
	West
	SouthEast
	SouthWest
	NorthEast
	NorthWest
)

var directionNames = [...]string{"south", "north", "east", "west", "southeast", "southwest", "northeast", "northwest"}

func (d Direction) String() string {
	if d < 0 || int(d) >= len(directionNames) {
		return "unknown"
	}
	return directionNames[d]
}

// DirSet is the direction cardinality of a state.
type DirSet int

const (
	One DirSet = iota
	Four
	Eight
)

var (
	oneDirs   = []Direction{South}
	fourDirs  = []Direction{South, North, East, West}
	eightDirs = []Direction{South, North, East, West, SouthEast, SouthWest, NorthEast, NorthWest}
)

// DirSetFromCount maps a declared direction count to a DirSet.
func DirSetFromCount(n int) (DirSet, bool) {
	switch n {
	case 1:
		return One, true
	case 4:
		return Four, true
	case 8:
		return Eight, true
	default:
		return One, false
	}
}

// Directions returns the ordered directions of the set. Callers must not modify it.
func (d DirSet) Directions() []Direction {
	switch d {
	case Four:
		return fourDirs
	case Eight:
		return eightDirs
	default:
		return oneDirs
	}
}

// Count returns the number of directions in the set.
func (d DirSet) Count() int {
	return len(d.Directions())
}

// Index returns the storage position of dir within the set, or -1.
func (d DirSet) Index(dir Direction) int {
	for i, candidate := range d.Directions() {
		if candidate == dir {
			return i
		}
	}
	return -1
}

// MarshalJSON encodes the set as its direction count.
func (d DirSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Count())
}

// UnmarshalJSON decodes a direction count.
func (d *DirSet) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	set, ok := DirSetFromCount(n)
	if !ok {
		return fmt.Errorf("invalid direction count %d", n)
	}
	*d = set
	return nil
}
