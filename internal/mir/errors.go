package mir

import "golang.org/x/xerrors"

// ParseError wraps a failure from the (out-of-scope) parser.
type ParseError struct {
	Msg string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return xerrors.Errorf("parse error: %s: %w", e.Msg, e.Err).Error()
	}
	return "parse error: " + e.Msg
}
func (e *ParseError) Unwrap() error { return e.Err }

// InvalidArguments is raised at a lowering site when a function or
// method call is given arguments of the wrong type, count, or name.
type InvalidArguments struct {
	Func string
	Msg  string
}

func (e *InvalidArguments) Error() string {
	return xerrors.Errorf("%s: invalid arguments: %s", e.Func, e.Msg).Error()
}

// NewInvalidArguments is a convenience constructor matching the
// original's "raised at the lowering site with a message naming the
// function" policy.
func NewInvalidArguments(fn, msg string) error {
	return &InvalidArguments{Func: fn, Msg: msg}
}

// MesonException is the general configuration-failure error: unknown
// language, missing required program, malformed serialized test file
// (testmanifest.Deserialize), unreachable invariant.
type MesonException struct {
	Msg string
	Err error
}

func (e *MesonException) Error() string {
	if e.Err != nil {
		return xerrors.Errorf("%s: %w", e.Msg, e.Err).Error()
	}
	return e.Msg
}
func (e *MesonException) Unwrap() error { return e.Err }

func NewMesonException(msg string) error { return &MesonException{Msg: msg} }

func WrapMesonException(msg string, err error) error {
	return &MesonException{Msg: msg, Err: err}
}

// NotImplemented marks a DSL construct the core deliberately does not
// lower (foreach, compound assignment, subscript expressions, chained
// method calls whose receiver is itself a function call — see spec §9
// Open Questions). Kept as a distinct type so tests can assert on it
// without string-matching.
type NotImplemented struct {
	Construct string
}

func (e *NotImplemented) Error() string {
	return "not implemented: " + e.Construct
}

func NewNotImplemented(construct string) error { return &NotImplemented{Construct: construct} }
