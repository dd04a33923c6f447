package dmi

import (
	"bufio"
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/danieljhkim/iconmerge/internal/sheet"
)

// Default icon size when the description omits width or height.
const defaultIconSize = 32

// Version is the description version written by Marshal.
const Version = "4.0"

// Metadata is the parsed DMI description.
type Metadata struct {
	Version    string
	IconWidth  int
	IconHeight int
	States     []*sheet.State
}

// ParseMetadata parses a DMI description block.
func ParseMetadata(text string) (*Metadata, error) {
	meta := &Metadata{IconWidth: defaultIconSize, IconHeight: defaultIconSize}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	begun := false
	var current *sheet.State
	frames := 1
	line := 0

	finish := func() {
		if current != nil {
			current.Delays = fitDelays(current.Delays, frames)
			meta.States = append(meta.States, current)
		}
	}

	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		if strings.HasPrefix(raw, "#") {
			switch raw {
			case "# BEGIN DMI":
				begun = true
			case "# END DMI":
				finish()
				return meta, nil
			}
			continue
		}
		if !begun {
			return nil, fmt.Errorf("%w: line %d before # BEGIN DMI", ErrBadMetadata, line)
		}

		key, value, ok := strings.Cut(raw, "=")
		if !ok {
			return nil, fmt.Errorf("%w: line %d: expected key = value", ErrBadMetadata, line)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if key == "state" {
			finish()
			name, err := unquote(value)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrBadMetadata, line, err)
			}
			current = &sheet.State{Name: name, Dirs: sheet.One}
			frames = 1
			continue
		}

		if current == nil {
			if err := meta.setHeader(key, value); err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrBadMetadata, line, err)
			}
			continue
		}

		n, err := setStateKey(current, key, value)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: state %q: %v", ErrBadMetadata, line, current.Name, err)
		}
		if n > 0 {
			frames = n
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadMetadata, err)
	}

	return nil, fmt.Errorf("%w: missing # END DMI", ErrBadMetadata)
}

func (m *Metadata) setHeader(key, value string) error {
	switch key {
	case "version":
		m.Version = value
	case "width", "height":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid %s %q", key, value)
		}
		if key == "width" {
			m.IconWidth = n
		} else {
			m.IconHeight = n
		}
	}
	return nil
}

// setStateKey applies one state attribute. It returns the declared frame
// count when key is "frames", otherwise 0. Unknown keys are ignored.
func setStateKey(st *sheet.State, key, value string) (int, error) {
	switch key {
	case "dirs":
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid dirs %q", value)
		}
		dirs, ok := sheet.DirSetFromCount(n)
		if !ok {
			return 0, fmt.Errorf("unsupported dirs %d", n)
		}
		st.Dirs = dirs
	case "frames":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid frames %q", value)
		}
		return n, nil
	case "delay":
		delays, err := parseFloats(value)
		if err != nil {
			return 0, fmt.Errorf("invalid delay %q", value)
		}
		st.Delays = delays
	case "loop":
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid loop %q", value)
		}
		st.Loop = n
	case "rewind":
		st.Rewind = value == "1"
	case "movement":
		st.Movement = value == "1"
	case "hotspot":
		coords, err := parseFloats(value)
		if err != nil || len(coords) < 2 {
			return 0, fmt.Errorf("invalid hotspot %q", value)
		}
		st.Offset = image.Pt(int(coords[0]), int(coords[1]))
	}
	return 0, nil
}

// fitDelays pads with 1 or truncates so there is exactly one delay per frame.
func fitDelays(delays []float64, frames int) []float64 {
	out := make([]float64, frames)
	for i := range out {
		if i < len(delays) {
			out[i] = delays[i]
		} else {
			out[i] = 1
		}
	}
	return out
}

func parseFloats(value string) ([]float64, error) {
	parts := strings.Split(value, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func unquote(value string) (string, error) {
	if len(value) < 2 || value[0] != '"' || value[len(value)-1] != '"' {
		return "", fmt.Errorf("state name %s is not quoted", value)
	}
	var b strings.Builder
	body := value[1 : len(value)-1]
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '\\' && i+1 < len(body) {
			i++
			switch body[i] {
			case 'n':
				b.WriteByte('\n')
			default:
				b.WriteByte(body[i])
			}
			continue
		}
		b.WriteByte(c)
	}
	return b.String(), nil
}

func quote(name string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(name); i++ {
		switch c := name[i]; c {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Format renders the description block for a sheet's icon size and states.
func (m *Metadata) Format() string {
	var b strings.Builder
	version := m.Version
	if version == "" {
		version = Version
	}

	b.WriteString("# BEGIN DMI\n")
	fmt.Fprintf(&b, "version = %s\n", version)
	fmt.Fprintf(&b, "\twidth = %d\n", m.IconWidth)
	fmt.Fprintf(&b, "\theight = %d\n", m.IconHeight)
	for _, st := range m.States {
		fmt.Fprintf(&b, "state = %s\n", quote(st.Name))
		fmt.Fprintf(&b, "\tdirs = %d\n", st.Dirs.Count())
		fmt.Fprintf(&b, "\tframes = %d\n", st.Frames())
		if st.Frames() > 1 || !allOnes(st.Delays) {
			delays := make([]string, len(st.Delays))
			for i, d := range st.Delays {
				delays[i] = strconv.FormatFloat(d, 'f', -1, 64)
			}
			fmt.Fprintf(&b, "\tdelay = %s\n", strings.Join(delays, ","))
		}
		if st.Loop != 0 {
			fmt.Fprintf(&b, "\tloop = %d\n", st.Loop)
		}
		if st.Rewind {
			b.WriteString("\trewind = 1\n")
		}
		if st.Movement {
			b.WriteString("\tmovement = 1\n")
		}
		if st.Offset != (image.Point{}) {
			fmt.Fprintf(&b, "\thotspot = %d,%d,1\n", st.Offset.X, st.Offset.Y)
		}
	}
	b.WriteString("# END DMI\n")
	return b.String()
}

func allOnes(delays []float64) bool {
	for _, d := range delays {
		if d != 1 {
			return false
		}
	}
	return true
}
