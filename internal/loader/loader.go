// Package loader writes a transformed table to its sinks. Every sink
// reports an Outcome instead of returning an error so one sink can never
// stop another.
package loader

import (
	"context"
	"errors"
	"fmt"

	"fashionetl/internal/model"
)

type Status string

const (
	StatusOK   Status = "OK"
	StatusSkip Status = "SKIP"
	StatusFail Status = "FAIL"
)

// ErrUnavailable marks a sink whose capability or configuration is absent.
// It turns into StatusSkip, never StatusFail.
var ErrUnavailable = errors.New("sink unavailable")

type Outcome struct {
	Sink   string
	Status Status
	Rows   int
	Err    error
}

func (o Outcome) String() string {
	switch o.Status {
	case StatusOK:
		return fmt.Sprintf("[OK] %s: %d rows", o.Sink, o.Rows)
	case StatusSkip:
		return fmt.Sprintf("[SKIP] %s: %v", o.Sink, o.Err)
	}
	return fmt.Sprintf("[FAIL] %s: %v", o.Sink, o.Err)
}

type Sink interface {
	Name() string
	Load(ctx context.Context, table model.Table) Outcome
}

// outcome classifies err for sink name.
func outcome(name string, rows int, err error) Outcome {
	switch {
	case err == nil:
		return Outcome{Sink: name, Status: StatusOK, Rows: rows}
	case errors.Is(err, ErrUnavailable):
		return Outcome{Sink: name, Status: StatusSkip, Err: err}
	}
	return Outcome{Sink: name, Status: StatusFail, Err: err}
}

// unavailable wraps a reason as ErrUnavailable.
func unavailable(reason string) error {
	return fmt.Errorf("%w: %s", ErrUnavailable, reason)
}

type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string { return fmt.Sprintf("write %s: %v", e.Path, e.Err) }
func (e *IOError) Unwrap() error { return e.Err }

type AuthenticationError struct {
	Err error
}

func (e *AuthenticationError) Error() string { return "authentication failed: " + e.Err.Error() }
func (e *AuthenticationError) Unwrap() error { return e.Err }

type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *ServiceError) Unwrap() error { return e.Err }

type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string { return "connect: " + e.Err.Error() }
func (e *ConnectionError) Unwrap() error { return e.Err }

type SchemaError struct {
	Table string
	Err   error
}

func (e *SchemaError) Error() string { return fmt.Sprintf("table %s: %v", e.Table, e.Err) }
func (e *SchemaError) Unwrap() error { return e.Err }
