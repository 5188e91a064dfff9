package opengl

import "fmt"

// Program is a linked vertex + fragment program.
type Program struct {
	Name string
	ID   uint32

	dev Device
}

// NewProgram compiles and links a program. Compile and link failures carry the
// driver's info log.
func NewProgram(dev Device, name, vertSrc, fragSrc string) (*Program, error) {
	id, err := dev.CompileProgram(vertSrc, fragSrc)
	if err != nil {
		return nil, fmt.Errorf("%s program: %w", name, err)
	}
	if !dev.ProgramLinked(id) {
		dev.DeleteProgram(id)
		return nil, fmt.Errorf("%s program: %w", name, ErrProgramNotLinked)
	}
	return &Program{Name: name, ID: id, dev: dev}, nil
}

func (p *Program) Use() {
	p.dev.UseProgram(p.ID)
}

// SetSampler points the named sampler uniform at a texture unit.
func (p *Program) SetSampler(name string, unit int32) {
	p.dev.UseProgram(p.ID)
	p.dev.SetSampler(p.ID, name, unit)
}

// Destroy deletes the program. Safe to call twice.
func (p *Program) Destroy() {
	if p.ID == 0 {
		return
	}
	p.dev.DeleteProgram(p.ID)
	p.ID = 0
}
