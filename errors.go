package chinook

import (
	"errors"
	"fmt"
)

// Standard sentinel errors. Every typed error below matches exactly one of
// them through errors.Is.
var (
	// ErrNotFound is returned when an exact lookup matches no row.
	ErrNotFound = errors.New("chinook: entity not found")

	// ErrMalformedInput is returned when an argument cannot be interpreted
	// as the expected identifier shape.
	ErrMalformedInput = errors.New("chinook: malformed input")

	// ErrStorage is returned when the storage accessor fails or yields a row
	// that cannot be turned into a record.
	ErrStorage = errors.New("chinook: storage failure")

	// ErrJoin is returned when a relation expected to resolve to exactly one
	// parent yields zero or several rows.
	ErrJoin = errors.New("chinook: join failure")
)

// Error codes reported to callers.
const (
	CodeMalformedInput = "MALFORMED_INPUT"
	CodeStorageFailure = "STORAGE_FAILURE"
	CodeJoinFailure    = "JOIN_FAILURE"
)

// Coder is implemented by errors that carry a stable, caller-facing code.
type Coder interface {
	Code() string
}

// CodeOf returns the code of the first Coder in err's chain, or "" if none.
func CodeOf(err error) string {
	var c Coder
	if errors.As(err, &c) {
		return c.Code()
	}
	return ""
}

// NotFoundError represents an exact lookup on a well-formed id without a
// matching row.
type NotFoundError struct {
	kind Kind
	id   any
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.id != nil {
		return fmt.Sprintf("%s with ID %v not found", e.kind.Label(), e.id)
	}
	return fmt.Sprintf("%s not found", e.kind.Label())
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(notFoundErr, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Kind returns the entity kind that was looked up.
func (e *NotFoundError) Kind() Kind {
	return e.kind
}

// ID returns the ID that was searched for, if available.
func (e *NotFoundError) ID() any {
	return e.id
}

// Code returns the kind-specific code, e.g. ALBUM_NOT_FOUND.
func (e *NotFoundError) Code() string {
	return e.kind.code() + "_NOT_FOUND"
}

// NewNotFoundError returns a new NotFoundError for the given kind and id.
func NewNotFoundError(kind Kind, id any) *NotFoundError {
	return &NotFoundError{kind: kind, id: id}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// MalformedInputError represents an argument that could not be interpreted.
type MalformedInputError struct {
	Kind  Kind   // Entity kind the argument addresses
	Arg   string // Argument name
	Value any    // Value as received
	Err   error  // Optional parse error
}

// Error returns the error string.
func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("invalid %s %s %q", e.Kind, e.Arg, fmt.Sprint(e.Value))
}

// Unwrap returns the underlying error.
func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// Is reports whether the target error matches MalformedInputError.
func (e *MalformedInputError) Is(err error) bool {
	return err == ErrMalformedInput
}

// Code returns CodeMalformedInput.
func (e *MalformedInputError) Code() string {
	return CodeMalformedInput
}

// IsMalformedInput returns true if the error is a MalformedInputError.
func IsMalformedInput(err error) bool {
	if err == nil {
		return false
	}
	var e *MalformedInputError
	return errors.As(err, &e) || errors.Is(err, ErrMalformedInput)
}

// QueryError wraps a storage error with the entity and operation that issued
// the read.
type QueryError struct {
	Entity Kind   // Entity kind being queried
	Op     string // Operation (e.g., "list", "get", "album_tracks")
	Err    error  // Underlying error
}

// Error returns the error string.
func (e *QueryError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("chinook: querying %s (%s): %v", e.Entity, e.Op, e.Err)
	}
	return fmt.Sprintf("chinook: querying %s: %v", e.Entity, e.Err)
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// Is reports whether the target error matches QueryError.
func (e *QueryError) Is(err error) bool {
	return err == ErrStorage
}

// Code returns CodeStorageFailure.
func (e *QueryError) Code() string {
	return CodeStorageFailure
}

// NewQueryError returns a new QueryError.
func NewQueryError(entity Kind, op string, err error) *QueryError {
	return &QueryError{Entity: entity, Op: op, Err: err}
}

// IsStorageFailure returns true if the error is a QueryError.
func IsStorageFailure(err error) bool {
	if err == nil {
		return false
	}
	var e *QueryError
	return errors.As(err, &e)
}

// RowError reports a row whose required column was NULL.
type RowError struct {
	Entity Kind
	Column string
}

// Error returns the error string.
func (e *RowError) Error() string {
	return fmt.Sprintf("chinook: %s row has NULL %s", e.Entity, e.Column)
}

// JoinError represents a reverse relation that did not resolve to exactly
// one parent row.
type JoinError struct {
	Relation string // Relation name, e.g. "track_album"
	Kind     Kind   // Kind of the child the relation started from
	ID       int    // ID of that child
	Count    int    // Number of parent rows returned
}

// Error returns the error string.
func (e *JoinError) Error() string {
	if e.Count == 0 {
		return fmt.Sprintf("chinook: %s for %s %d not found", e.Relation, e.Kind, e.ID)
	}
	return fmt.Sprintf("chinook: %s for %s %d not singular (got %d results, expected 1)", e.Relation, e.Kind, e.ID, e.Count)
}

// Is reports whether the target error matches JoinError.
func (e *JoinError) Is(err error) bool {
	return err == ErrJoin
}

// Code returns CodeJoinFailure.
func (e *JoinError) Code() string {
	return CodeJoinFailure
}

// NewJoinError returns a new JoinError.
func NewJoinError(relation string, kind Kind, id, count int) *JoinError {
	return &JoinError{Relation: relation, Kind: kind, ID: id, Count: count}
}

// IsJoinFailure returns true if the error is a JoinError.
func IsJoinFailure(err error) bool {
	if err == nil {
		return false
	}
	var e *JoinError
	return errors.As(err, &e) || errors.Is(err, ErrJoin)
}
