// Package rerr defines the core's single error sum type.
package rerr

import "fmt"

// Kind identifies the broad category of a core error.
type Kind int

const (
	// Generate covers extractor invocation and other IO-adjacent failures.
	Generate Kind = iota
	// InvalidTarget covers target-spec parse and validation failures.
	InvalidTarget
	// ManifestParse covers Cargo.toml parse failures.
	ManifestParse
	// FilterNotMatched signals a render filter that never matched a path.
	FilterNotMatched
	// ModuleNotFound signals a named module absent from a crate.
	ModuleNotFound
	// Serialization wraps an encoder/decoder failure.
	Serialization
	// Io wraps a plain filesystem failure.
	Io
)

func (k Kind) String() string {
	switch k {
	case Generate:
		return "generate"
	case InvalidTarget:
		return "invalid_target"
	case ManifestParse:
		return "manifest_parse"
	case FilterNotMatched:
		return "filter_not_matched"
	case ModuleNotFound:
		return "module_not_found"
	case Serialization:
		return "serialization"
	case Io:
		return "io"
	default:
		return "unknown"
	}
}

// Error is the core's error sum: a Kind tag, a message, and an optional
// wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether e carries kind k. Kind is not itself an error, so
// errors.Is cannot test for a kind.
func (e *Error) IsKind(k Kind) bool { return e.Kind == k }

func New(k Kind, msg string) *Error {
	return &Error{Kind: k, Msg: msg}
}

func Wrap(k Kind, msg string, err error) *Error {
	return &Error{Kind: k, Msg: msg, Err: err}
}

// FilterNotMatchedErr constructs the renderer-specific signal named in the
// error taxonomy: the user's filter never matched any rendered path.
func FilterNotMatchedErr(filter string) *Error {
	return New(FilterNotMatched, fmt.Sprintf("filter %q matched no item", filter))
}

// ModuleNotFoundErr constructs the named-module-absent signal.
func ModuleNotFoundErr(name string) *Error {
	return New(ModuleNotFound, fmt.Sprintf("module %q not found", name))
}
