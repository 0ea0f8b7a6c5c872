package urlfunc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/roach88/sqliteurl/internal/formdecode"
	"github.com/roach88/sqliteurl/internal/ident"
	"github.com/roach88/sqliteurl/internal/lines"
	"github.com/roach88/sqliteurl/internal/urlbuild"
)

// Function names.
const (
	NameURL      = "url"
	NameValid    = "url_valid"
	NameScheme   = "url_scheme"
	NameHost     = "url_host"
	NamePath     = "url_path"
	NameQuery    = "url_query"
	NameFragment = "url_fragment"
	NameUser     = "url_user"
	NamePassword = "url_password"
	NameEscape   = "url_escape"
	NameUnescape = "url_unescape"
	NameVersion  = "url_version"
	NameDebug    = "url_debug"

	NameLinesVersion = "lines_version"
	NameLinesDebug   = "lines_debug"
)

const (
	variadic = -1
	hexUpper = "0123456789ABCDEF"
)

// ErrInvalidUTF8 is returned by Unescape when the decoded bytes are not
// valid UTF-8.
var ErrInvalidUTF8 = errors.New("decoded text is not valid UTF-8")

// Func describes one scalar SQL function.
type Func struct {
	Name string

	// NArg is the SQL arity, or -1 for variadic.
	NArg int

	// Deterministic marks functions whose result depends only on their
	// arguments.
	Deterministic bool

	// Impl is a typed Go func with parameters of type any.
	Impl any

	// Call invokes the function with raw host values.
	Call func(args []any) (any, error)
}

// Functions returns the scalar function set in registration order.
func Functions() []Func {
	return []Func{
		{
			Name:          NameURL,
			NArg:          variadic,
			Deterministic: true,
			Impl:          func(args ...any) (string, error) { return URL(args) },
			Call:          func(args []any) (any, error) { return URL(args) },
		},
		{
			Name:          NameValid,
			NArg:          1,
			Deterministic: true,
			Impl:          func(v any) (int64, error) { return ValidInt(Text(v)), nil },
			Call: func(args []any) (any, error) {
				if err := arity(NameValid, args, 1); err != nil {
					return nil, err
				}
				return ValidInt(Text(args[0])), nil
			},
		},
		getter(NameScheme, (*ident.Identifier).Scheme),
		getter(NameHost, (*ident.Identifier).Host),
		getter(NamePath, (*ident.Identifier).Path),
		getter(NameQuery, (*ident.Identifier).Query),
		getter(NameFragment, (*ident.Identifier).Fragment),
		getter(NameUser, (*ident.Identifier).Username),
		getter(NamePassword, (*ident.Identifier).Password),
		unary(NameEscape, func(s string) (string, error) { return Escape(s), nil }),
		unary(NameUnescape, Unescape),
		nullary(NameVersion, VersionString),
		nullary(NameDebug, Debug),
		nullary(NameLinesVersion, lines.VersionString),
		nullary(NameLinesDebug, LinesDebug),
	}
}

func getter(name string, get func(*ident.Identifier) string) Func {
	return unary(name, func(s string) (string, error) {
		return Extract(name, s, get)
	})
}

func unary(name string, fn func(string) (string, error)) Func {
	return Func{
		Name:          name,
		NArg:          1,
		Deterministic: true,
		Impl:          func(v any) (string, error) { return fn(Text(v)) },
		Call: func(args []any) (any, error) {
			if err := arity(name, args, 1); err != nil {
				return nil, err
			}
			return fn(Text(args[0]))
		},
	}
}

func nullary(name string, fn func() string) Func {
	return Func{
		Name:          name,
		NArg:          0,
		Deterministic: true,
		Impl:          func() string { return fn() },
		Call: func(args []any) (any, error) {
			if err := arity(name, args, 0); err != nil {
				return nil, err
			}
			return fn(), nil
		},
	}
}

func arity(name string, args []any, want int) error {
	if len(args) != want {
		return fmt.Errorf("%s: expected %d arguments, got %d", name, want, len(args))
	}
	return nil
}

// Text coerces a host value to text. NULL becomes "".
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		if t {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(t)
	}
}

// URL implements url(base, key, value, ...).
func URL(args []any) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("%s() requires at least one argument", NameURL)
	}
	kv := make([]string, len(args)-1)
	for i, a := range args[1:] {
		kv[i] = Text(a)
	}
	ops, err := urlbuild.ParseOps(kv)
	if err != nil {
		return "", err
	}
	return urlbuild.Build(Text(args[0]), ops)
}

// ValidInt implements url_valid: 1 when text parses as an absolute URL.
func ValidInt(text string) int64 {
	if urlbuild.Valid(text) {
		return 1
	}
	return 0
}

// Extract parses text and returns one component, "" when absent.
func Extract(name, text string, get func(*ident.Identifier) string) (string, error) {
	id, err := ident.Parse(text)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return get(id), nil
}

// Escape percent-encodes every byte outside [A-Za-z0-9].
func Escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isAlnum(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hexUpper[c>>4])
		b.WriteByte(hexUpper[c&0x0f])
	}
	return b.String()
}

// Unescape decodes %XX escapes. Malformed escapes pass through unchanged.
// The decoded bytes must form valid UTF-8.
func Unescape(s string) (string, error) {
	out := formdecode.PercentDecode(s)
	if !utf8.Valid(out) {
		return "", fmt.Errorf("%s: %w", NameUnescape, ErrInvalidUTF8)
	}
	return string(out), nil
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
