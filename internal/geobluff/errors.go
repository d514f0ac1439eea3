package geobluff

import (
	"errors"
	"fmt"
)

// Error classes. Every rejected operation returns an *OpError that matches
// exactly one of these with errors.Is.
var (
	ErrUnknownSession  = errf("unknown session")
	ErrIllegalPhase    = errf("illegal phase")
	ErrNotYourTurn     = errf("not your turn")
	ErrInvalidArgument = errf("invalid argument")

	ErrDeckTooSmall = errors.New("deck too small for the requested hand size")
)

type staticErr string

func (e staticErr) Error() string { return string(e) }
func errf(s string) error         { return staticErr(s) }

// OpError is a rejected operation: a class plus the message shown to players.
type OpError struct {
	Kind error
	Msg  string
}

func (e *OpError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return e.Kind.Error()
}

func (e *OpError) Is(target error) bool { return e.Kind == target }

func (e *OpError) Unwrap() error { return e.Kind }

func illegalPhase(msg string) error { return &OpError{Kind: ErrIllegalPhase, Msg: msg} }

func notYourTurn() error { return &OpError{Kind: ErrNotYourTurn, Msg: "Not your turn"} }

func invalidArg(format string, args ...any) error {
	return &OpError{Kind: ErrInvalidArgument, Msg: fmt.Sprintf(format, args...)}
}

// UnknownSession is returned by stores when no session matches id.
func UnknownSession() error {
	return &OpError{Kind: ErrUnknownSession, Msg: "No game in progress"}
}
