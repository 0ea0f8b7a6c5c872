package queryir

import (
	"fmt"
	"regexp"

	"github.com/hashicorp/go-multierror"

	"github.com/roach88/sqliteurl/internal/ir"
)

// validIdentifier matches names that are safe to interpolate into SQL.
var validIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidationResult lists the problems found in a query.
type ValidationResult struct {
	// Valid is true when Problems is empty.
	Valid bool

	// Problems describes each violation.
	Problems []string
}

// Err returns the problems as one aggregated error, or nil.
func (r ValidationResult) Err() error {
	var errs *multierror.Error
	for _, p := range r.Problems {
		errs = multierror.Append(errs, fmt.Errorf("%s", p))
	}
	return errs.ErrorOrNil()
}

// Validate checks a query before compilation. It is a pure function.
func Validate(query Query) ValidationResult {
	v := &validator{problems: []string{}}
	v.validateQuery(query)

	return ValidationResult{
		Valid:    len(v.problems) == 0,
		Problems: v.problems,
	}
}

type validator struct {
	problems []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) identifier(kind, name string) {
	if !validIdentifier.MatchString(name) {
		v.addProblem("invalid %s name %q", kind, name)
	}
}

func (v *validator) validateQuery(q Query) {
	switch query := q.(type) {
	case nil:
		v.addProblem("nil query")
	case Scan:
		v.validateScan(query)
	case *Scan:
		v.validateScan(*query)
	case Project:
		v.validateProject(query)
	case *Project:
		v.validateProject(*query)
	default:
		v.addProblem("unknown query type: %T", q)
	}
}

func (v *validator) validateScan(s Scan) {
	v.identifier("relation", s.Relation)
	if len(s.Columns) == 0 {
		v.addProblem("scan of %s selects no columns", s.Relation)
	}
	for _, c := range s.Columns {
		v.identifier("column", c)
	}
	for _, a := range s.Args {
		v.validateExpr(a)
	}
	if s.Limit < 0 {
		v.addProblem("negative limit %d", s.Limit)
	}
	if s.Filter != nil {
		v.validatePredicate(s.Filter)
	}
}

func (v *validator) validateProject(p Project) {
	if len(p.Columns) == 0 {
		v.addProblem("projection has no columns")
	}
	seen := make(map[string]bool, len(p.Columns))
	for _, c := range p.Columns {
		v.identifier("column", c.Name)
		if seen[c.Name] {
			v.addProblem("duplicate column %q", c.Name)
		}
		seen[c.Name] = true
		v.validateExpr(c.Expr)
	}
}

func (v *validator) validateExpr(e Expr) {
	switch expr := e.(type) {
	case nil:
		v.addProblem("nil expression")
	case Literal:
		if expr.Value == nil {
			v.addProblem("literal without value")
		}
	case Call:
		v.identifier("function", expr.Func)
		for _, a := range expr.Args {
			v.validateExpr(a)
		}
	default:
		v.addProblem("unknown expression type: %T", e)
	}
}

func (v *validator) validatePredicate(p Predicate) {
	switch pred := p.(type) {
	case Equals:
		v.validateEquals(pred)
	case *Equals:
		v.validateEquals(*pred)
	case And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	case *And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	default:
		v.addProblem("unknown predicate type: %T", p)
	}
}

func (v *validator) validateEquals(eq Equals) {
	v.identifier("column", eq.Field)
	if _, isNull := eq.Value.(ir.Null); isNull || eq.Value == nil {
		v.addProblem("field %q compared to NULL never matches", eq.Field)
	}
}
