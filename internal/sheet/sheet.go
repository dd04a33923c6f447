// Package sheet holds the in-memory model of a decoded sprite sheet.
//
// A Sheet is one non-premultiplied RGBA bitmap cut into fixed-size icons plus a catalogue of
// named states. Each state owns a contiguous run of icons, one per
// (direction, frame) pair, laid out row-major across the bitmap. The model
// knows nothing about the container format; see package dmi for that.
package sheet

import (
	"fmt"
	"image"
	"slices"
)

// Catalogue maps state names to states. Keys are unique within one sheet.
type Catalogue map[string]*State

// State is one named animation unit.
type State struct {
	// Name is the unique state identifier within a sheet.
	Name string `json:"name"`

	// Dirs is the direction cardinality of the state.
	Dirs DirSet `json:"dirs"`

	// Delays holds one timing entry per frame; the frame count is len(Delays).
	Delays []float64 `json:"delays"`

	// Loop is the number of times the animation plays (0 = forever).
	Loop int `json:"loop,omitempty"`

	// Rewind plays the animation back and forth.
	Rewind bool `json:"rewind,omitempty"`

	// Movement marks a movement state.
	Movement bool `json:"movement,omitempty"`

	// Offset is display metadata only and never affects rectangle layout.
	Offset image.Point `json:"offset"`
}

// Frames returns the number of frames in the state.
func (s *State) Frames() int {
	return len(s.Delays)
}

// Icons returns the number of icons the state occupies in the grid.
func (s *State) Icons() int {
	return s.Dirs.Count() * s.Frames()
}

// MetaEqual reports whether s and o are equal in every attribute except Offset.
func (s *State) MetaEqual(o *State) bool {
	return s.Name == o.Name &&
		s.Dirs == o.Dirs &&
		slices.Equal(s.Delays, o.Delays) &&
		s.Loop == o.Loop &&
		s.Rewind == o.Rewind &&
		s.Movement == o.Movement
}

// Equal reports whether s and o are equal in every attribute.
func (s *State) Equal(o *State) bool {
	return s.MetaEqual(o) && s.Offset == o.Offset
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	c := *s
	c.Delays = slices.Clone(s.Delays)
	return &c
}

// String renders the state for verbose diagnostics.
func (s *State) String() string {
	return fmt.Sprintf("%q dirs=%d delays=%v loop=%d rewind=%t movement=%t offset=%d,%d",
		s.Name, s.Dirs.Count(), s.Delays, s.Loop, s.Rewind, s.Movement, s.Offset.X, s.Offset.Y)
}

// Sheet is a decoded sprite sheet: a pixel grid paired with its catalogue.
type Sheet struct {
	// Grid is the full bitmap. Treat it as read-only.
	Grid *image.NRGBA

	// IconWidth and IconHeight are the size of one icon cell.
	IconWidth  int
	IconHeight int

	// Catalogue maps each state name to its state.
	Catalogue Catalogue

	// Order lists state names in storage order; it only drives layout.
	Order []string

	// Chunks holds the raw ancillary text chunks of the source container,
	// carried through to the encoder untouched.
	Chunks [][]byte

	starts map[string]int
}

// New builds a sheet from a grid, icon size and states in storage order.
// It fails if state names repeat.
func New(grid *image.NRGBA, iconWidth, iconHeight int, states []*State) (*Sheet, error) {
	s := &Sheet{
		Grid:       grid,
		IconWidth:  iconWidth,
		IconHeight: iconHeight,
		Catalogue:  make(Catalogue, len(states)),
		Order:      make([]string, 0, len(states)),
		starts:     make(map[string]int, len(states)),
	}

	next := 0
	for _, st := range states {
		if _, dup := s.Catalogue[st.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateState, st.Name)
		}
		s.Catalogue[st.Name] = st
		s.Order = append(s.Order, st.Name)
		s.starts[st.Name] = next
		next += st.Icons()
	}

	return s, nil
}

// State returns the named state.
func (s *Sheet) State(name string) (*State, bool) {
	st, ok := s.Catalogue[name]
	return st, ok
}

// Names returns the catalogue keys in storage order.
func (s *Sheet) Names() []string {
	return slices.Clone(s.Order)
}

// Columns returns the number of icons per grid row.
func (s *Sheet) Columns() int {
	if s.IconWidth <= 0 {
		return 0
	}
	return s.Grid.Bounds().Dx() / s.IconWidth
}

// SameGeometry reports whether both sheets use the same icon size.
func (s *Sheet) SameGeometry(o *Sheet) bool {
	return s.IconWidth == o.IconWidth && s.IconHeight == o.IconHeight
}

// Rect resolves the grid rectangle holding one frame of a state in one direction.
// Rectangles are resolved per sheet; two versions of the same state may live
// at different coordinates.
func (s *Sheet) Rect(name string, dir Direction, frame int) (image.Rectangle, error) {
	st, ok := s.Catalogue[name]
	if !ok {
		return image.Rectangle{}, fmt.Errorf("%w: %q", ErrUnknownState, name)
	}

	dirIndex := st.Dirs.Index(dir)
	if dirIndex < 0 {
		return image.Rectangle{}, fmt.Errorf("%w: state %q has no direction %s", ErrOutOfRange, name, dir)
	}
	if frame < 0 || frame >= st.Frames() {
		return image.Rectangle{}, fmt.Errorf("%w: state %q frame %d of %d", ErrOutOfRange, name, frame, st.Frames())
	}

	cols := s.Columns()
	if cols == 0 {
		return image.Rectangle{}, fmt.Errorf("%w: icon width %d wider than grid", ErrRectOutOfBounds, s.IconWidth)
	}

	index := s.starts[name] + frame*st.Dirs.Count() + dirIndex
	origin := s.Grid.Bounds().Min
	x := origin.X + (index%cols)*s.IconWidth
	y := origin.Y + (index/cols)*s.IconHeight
	rect := image.Rect(x, y, x+s.IconWidth, y+s.IconHeight)

	if !rect.In(s.Grid.Bounds()) {
		return image.Rectangle{}, fmt.Errorf("%w: state %q icon %d at %v", ErrRectOutOfBounds, name, index, rect)
	}

	return rect, nil
}

// Validate checks that every rectangle of every state lies inside the grid.
func (s *Sheet) Validate() error {
	for _, name := range s.Order {
		st := s.Catalogue[name]
		if st.Frames() == 0 {
			return fmt.Errorf("%w: state %q has no frames", ErrOutOfRange, name)
		}
		last := st.Dirs.Directions()[st.Dirs.Count()-1]
		if _, err := s.Rect(name, last, st.Frames()-1); err != nil {
			return err
		}
	}
	return nil
}

// WithGrid returns a sheet sharing s's catalogue, layout and chunks but
// backed by grid. The grid must have the same bounds as s.Grid.
func (s *Sheet) WithGrid(grid *image.NRGBA) *Sheet {
	out := *s
	out.Grid = grid
	return &out
}
