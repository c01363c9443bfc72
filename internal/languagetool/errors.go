package languagetool

import (
	"errors"
	"fmt"
)

// Kind classifies why a check failed.
type Kind uint8

const (
	// Unreachable means the server could not be reached at all.
	Unreachable Kind = iota + 1
	// Malformed means the server answered with something neither schema accepts.
	Malformed
)

func (k Kind) String() string {
	switch k {
	case Unreachable:
		return "unreachable"
	case Malformed:
		return "malformed response"
	}
	return "unknown"
}

// Failure is the error returned by Check.
type Failure struct {
	Kind   Kind
	Server string
	Err    error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s (%s): %v", f.Kind, f.Server, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// KindOf returns the failure kind carried by err, or 0 if err is not a Failure.
func KindOf(err error) Kind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return 0
}

func unreachable(server string, err error) error {
	return &Failure{Kind: Unreachable, Server: server, Err: err}
}

func malformed(server string, err error) error {
	return &Failure{Kind: Malformed, Server: server, Err: err}
}
