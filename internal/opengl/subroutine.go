package opengl

import (
	"errors"
	"fmt"
)

var ErrSubroutineNotFound = errors.New("subroutine not found")

// Subroutines is the resolved set of fragment subroutine implementations a
// program can switch between.
type Subroutines struct {
	names   []string
	indices []uint32
	dev     Device
}

// ResolveSubroutines looks up every name in the program's fragment stage.
func ResolveSubroutines(p *Program, names ...string) (*Subroutines, error) {
	s := &Subroutines{
		names:   names,
		indices: make([]uint32, len(names)),
		dev:     p.dev,
	}
	for i, name := range names {
		idx := p.dev.SubroutineIndex(p.ID, name)
		if idx == InvalidIndex {
			return nil, fmt.Errorf("%s program: %w: %q", p.Name, ErrSubroutineNotFound, name)
		}
		s.indices[i] = idx
	}
	return s, nil
}

func (s *Subroutines) Len() int {
	return len(s.indices)
}

// Index returns the driver index of the i-th subroutine.
func (s *Subroutines) Index(i int) (uint32, bool) {
	if i < 0 || i >= len(s.indices) {
		return 0, false
	}
	return s.indices[i], true
}

// Select makes the i-th subroutine active. Subroutine selection is not part of
// program state, so it must be issued after every UseProgram.
func (s *Subroutines) Select(i int) error {
	idx, ok := s.Index(i)
	if !ok {
		return fmt.Errorf("%w: index %d of %d", ErrSubroutineNotFound, i, len(s.indices))
	}
	s.dev.UniformSubroutines([]uint32{idx})
	return nil
}
