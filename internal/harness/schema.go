package harness

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

//go:embed schema.cue
var schemaCUE string

// SchemaError reports a scenario that does not conform to the schema.
type SchemaError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *SchemaError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// schema holds the compiled #Scenario definition. A cue.Context is not safe
// for concurrent use, so every use goes through mu.
type schema struct {
	mu       sync.Mutex
	ctx      *cue.Context
	scenario cue.Value
}

var (
	schemaOnce sync.Once
	theSchema  *schema
	schemaErr  error
)

func loadSchema() (*schema, error) {
	schemaOnce.Do(func() {
		ctx := cuecontext.New()
		v := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
		if err := v.Err(); err != nil {
			schemaErr = fmt.Errorf("compile scenario schema: %w", formatCUEError(err))
			return
		}
		def := v.LookupPath(cue.ParsePath("#Scenario"))
		if err := def.Err(); err != nil {
			schemaErr = fmt.Errorf("lookup #Scenario: %w", formatCUEError(err))
			return
		}
		theSchema = &schema{ctx: ctx, scenario: def}
	})
	return theSchema, schemaErr
}

// checkData validates decoded YAML against #Scenario.
func (s *schema) checkData(data any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.ctx.Encode(data)
	if err := v.Err(); err != nil {
		return formatCUEError(err)
	}
	return s.check(v)
}

// compile builds a CUE scenario source and decodes it into a Scenario.
func (s *schema) compile(src []byte, filename string) (*Scenario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := s.check(v); err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := s.scenario.Unify(v).Decode(&scenario); err != nil {
		return nil, formatCUEError(err)
	}
	return &scenario, nil
}

func (s *schema) check(v cue.Value) error {
	unified := s.scenario.Unify(v)
	return formatCUEError(unified.Validate(cue.Concrete(true)))
}

// formatCUEError keeps the first CUE error and its position.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	format, args := first.Msg()
	se := &SchemaError{
		Field:   strings.Join(first.Path(), "."),
		Message: fmt.Sprintf(format, args...),
	}
	if positions := errors.Positions(first); len(positions) > 0 {
		se.Pos = positions[0]
	}
	if len(errs) > 1 {
		se.Message += fmt.Sprintf(" (and %d more errors)", len(errs)-1)
	}
	return se
}
