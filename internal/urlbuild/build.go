// Package urlbuild applies ordered key/value operations to a URL.
//
// A build starts from a parsed base (or ident.DefaultSeed when the base is
// empty) and applies each operation as one validated field mutation, left to
// right. The first failure aborts the whole build; callers never observe a
// partially mutated URL.
package urlbuild

import (
	"fmt"

	"github.com/roach88/sqliteurl/internal/ident"
)

// Operation keys.
const (
	KeyScheme   = "scheme"
	KeyHost     = "host"
	KeyPath     = "path"
	KeyQuery    = "query"
	KeyFragment = "fragment"
	KeyUser     = "user"
	KeyPassword = "password"
	KeyOptions  = "options"
	KeyZoneID   = "zoneid"
)

// Keys lists the operation vocabulary in documentation order.
var Keys = []string{
	KeyScheme, KeyHost, KeyPath, KeyQuery, KeyFragment,
	KeyUser, KeyPassword, KeyOptions, KeyZoneID,
}

// Op is one field mutation.
type Op struct {
	Key   string
	Value string
}

// ParseOps pairs a flat key, value, key, value... list.
// Returns an arity error when a key has no value.
func ParseOps(args []string) ([]Op, error) {
	if len(args)%2 != 0 {
		return nil, NewArityError(len(args))
	}
	ops := make([]Op, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		ops = append(ops, Op{Key: args[i], Value: args[i+1]})
	}
	return ops, nil
}

// Build applies ops to base and returns the serialized URL.
//
// An empty base starts from ident.DefaultSeed ("scheme://"), a permissive
// placeholder that later scheme/host operations are expected to overwrite.
// Special schemes still need a host by the end of the build.
func Build(base string, ops []Op) (string, error) {
	id := ident.Default()
	if base != "" {
		parsed, err := ident.Parse(base)
		if err != nil {
			return "", &BuildError{
				Code:    ErrCodeInvalidBase,
				Message: "Invalid base URL",
				Index:   -1,
				Err:     err,
			}
		}
		id = parsed
	}

	for i, op := range ops {
		if err := Apply(id, i, op); err != nil {
			return "", err
		}
	}

	if err := id.Validate(); err != nil {
		return "", &BuildError{
			Code:    ErrCodeInvalidField,
			Message: "Invalid URL",
			Index:   -1,
			Err:     err,
		}
	}
	return id.String(), nil
}

// Apply performs a single operation on id. index is reported in errors.
func Apply(id *ident.Identifier, index int, op Op) error {
	var err error
	switch op.Key {
	case KeyScheme:
		err = id.SetScheme(op.Value)
	case KeyHost:
		err = id.SetHost(op.Value)
	case KeyPath:
		err = id.SetPath(op.Value)
	case KeyQuery:
		err = id.SetQuery(op.Value)
	case KeyFragment:
		err = id.SetFragment(op.Value)
	case KeyUser:
		err = id.SetUsername(op.Value)
	case KeyPassword:
		err = id.SetPassword(op.Value)
	case KeyOptions:
		err = id.AppendPathOption(op.Value)
	case KeyZoneID:
		err = id.SetZone(op.Value)
	default:
		return NewUnknownKeyError(index, op.Key)
	}
	if err != nil {
		return &BuildError{
			Code:    ErrCodeInvalidField,
			Message: fmt.Sprintf("Invalid %s", op.Key),
			Key:     op.Key,
			Index:   index,
			Err:     err,
		}
	}
	return nil
}

// Valid reports whether text parses as an absolute URL. It never fails.
func Valid(text string) bool {
	_, err := ident.Parse(text)
	return err == nil
}
