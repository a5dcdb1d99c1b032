package dnstypes

import (
	"errors"
	"fmt"
)

// Kind classifies sync errors by the side that failed and whether the pass can survive it.
type Kind string

const (
	KindSourceUnavailable Kind = "source_unavailable"
	KindSourceProtocol    Kind = "source_protocol"
	KindSinkUnavailable   Kind = "sink_unavailable"
	KindSinkAuth          Kind = "sink_auth"
	KindRecordApply       Kind = "record_apply"
)

// Sentinels for errors.Is checks. A *SyncError matches the sentinel of its Kind.
var (
	ErrSourceUnavailable = errors.New("lease source unavailable")
	ErrSourceProtocol    = errors.New("lease source protocol error")
	ErrSinkUnavailable   = errors.New("dns sink unavailable")
	ErrSinkAuth          = errors.New("dns sink authentication failed")
	ErrRecordApply       = errors.New("dns record apply failed")
)

var kindSentinels = map[Kind]error{
	KindSourceUnavailable: ErrSourceUnavailable,
	KindSourceProtocol:    ErrSourceProtocol,
	KindSinkUnavailable:   ErrSinkUnavailable,
	KindSinkAuth:          ErrSinkAuth,
	KindRecordApply:       ErrRecordApply,
}

// SyncError wraps an underlying error with the operation that failed and its kind.
type SyncError struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *SyncError) Error() string {
	if e == nil {
		return "<nil>"
	}
	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *SyncError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is lets errors.Is(err, ErrSinkAuth) and friends match on kind.
func (e *SyncError) Is(target error) bool {
	if e == nil {
		return false
	}
	return kindSentinels[e.Kind] == target
}

// Fatal reports whether the error kind aborts a sync pass.
func (k Kind) Fatal() bool {
	return k != KindRecordApply
}

// NewError builds a *SyncError.
func NewError(op string, kind Kind, err error) *SyncError {
	return &SyncError{Op: op, Kind: kind, Err: err}
}

// IsKind reports whether err carries a *SyncError of the given kind.
func IsKind(err error, kind Kind) bool {
	var se *SyncError
	if errors.As(err, &se) {
		return se.Kind == kind
	}
	return false
}

// KindOf returns the kind of the first *SyncError in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var se *SyncError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}
