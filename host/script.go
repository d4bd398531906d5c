package host

import (
	"fmt"

	"github.com/Shopify/go-lua"

	"github.com/mirelab/scenebridge/synth"
)

// CompileError reports that a script unit failed to compile. The diagnostic
// comes straight from the Lua parser.
type CompileError struct {
	Diagnostic string
}

func (e *CompileError) Error() string {
	return "script parsing error: " + e.Diagnostic
}

// Script is one compiled script unit with its own interpreter state. A
// script is never shared between executions; the owning Host serializes all
// access to it.
type Script struct {
	l         *lua.State
	chunkName string
}

// CompileScript compiles source into a fresh interpreter state. A parse
// failure returns a *CompileError carrying the compiler diagnostic.
func CompileScript(chunkName, source string) (*Script, error) {
	l := lua.NewState()
	lua.OpenLibraries(l)
	if err := lua.LoadBuffer(l, source, chunkName, ""); err != nil {
		return nil, &CompileError{Diagnostic: err.Error()}
	}
	return &Script{l: l, chunkName: chunkName}, nil
}

// Run executes the compiled chunk and then the unit's init entry point, if
// one was defined. Failures inside the unit's guarded body never surface
// here; they land in the unit's error field. Run itself errors only when the
// chunk or the entry point fails outside that guard.
func (s *Script) Run() error {
	if err := s.l.ProtectedCall(0, 0, 0); err != nil {
		return fmt.Errorf("script body failed: %w", err)
	}

	s.l.Global("init")
	if s.l.TypeOf(-1) != lua.TypeFunction {
		s.l.Pop(1)
		return nil
	}
	if err := s.l.ProtectedCall(0, 0, 0); err != nil {
		return fmt.Errorf("script init failed: %w", err)
	}
	return nil
}

// Tick invokes the script's global tick function, if it defined one.
func (s *Script) Tick() error {
	s.l.Global("tick")
	if s.l.TypeOf(-1) != lua.TypeFunction {
		s.l.Pop(1)
		return nil
	}
	if err := s.l.ProtectedCall(0, 0, 0); err != nil {
		return fmt.Errorf("script tick failed: %w", err)
	}
	return nil
}

// Output returns the lines recorded by the unit's capture function, in
// emission order.
func (s *Script) Output() []string {
	s.l.Global(synth.FieldOutputLines)
	defer s.l.Pop(1)
	if s.l.TypeOf(-1) != lua.TypeTable {
		return nil
	}

	var out []string
	for i := 1; ; i++ {
		s.l.RawGetInt(-1, i)
		if s.l.TypeOf(-1) == lua.TypeNil {
			s.l.Pop(1)
			break
		}
		line, _ := s.l.ToString(-1)
		out = append(out, line)
		s.l.Pop(1)
	}
	return out
}

// ErrorMessage returns the unit's recorded failure message; empty means the
// guarded body completed without error.
func (s *Script) ErrorMessage() string {
	s.l.Global(synth.FieldErrorMessage)
	defer s.l.Pop(1)
	if s.l.TypeOf(-1) != lua.TypeString {
		return ""
	}
	msg, _ := s.l.ToString(-1)
	return msg
}

// Result returns the unit's result slot converted to a Go value, or nil if
// the fragment never assigned it.
func (s *Script) Result() any {
	s.l.Global(synth.FieldResult)
	defer s.l.Pop(1)
	return luaToGo(s.l, -1)
}
