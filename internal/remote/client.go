// Package remote defines the contract with the authoritative API and the
// tagged error classification the drain loop relies on.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cortex-os/cortex/internal/models"
)

// ErrorKind classifies a remote failure for the drain loop: retryable
// failures consume retry budget, fatal ones are dropped immediately, and
// not-found is swallowed so one missing entity does not block the queue.
type ErrorKind int

const (
	KindRetryable ErrorKind = iota
	KindFatal
	KindNotFound
)

// Error is a classified remote-call failure.
type Error struct {
	Kind   ErrorKind
	Op     string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("remote: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("remote: %s: status %d", e.Op, e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a classified remote error.
func NewError(kind ErrorKind, op string, status int, err error) *Error {
	return &Error{Kind: kind, Op: op, Status: status, Err: err}
}

func kindOf(err error) (ErrorKind, bool) {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind, true
	}
	return 0, false
}

// IsRetryable reports whether err should consume retry budget. Unclassified
// errors default to retryable, matching the queue's recovery-first posture.
func IsRetryable(err error) bool {
	if k, ok := kindOf(err); ok {
		return k == KindRetryable
	}
	return err != nil
}

// IsFatal reports whether err can never succeed on retry.
func IsFatal(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindFatal
}

// IsNotFound reports whether the remote rejected the operation because the
// entity does not exist there.
func IsNotFound(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindNotFound
}

// CreateResult carries the authoritative id (and full body) returned by a
// remote create.
type CreateResult struct {
	ID   string
	Body json.RawMessage
}

// Client is the remote API collaborator. Entity-specific routing (habit
// delete meaning archive, decision update meaning outcome recording) is an
// implementation concern; callers dispatch by kind and operation.
type Client interface {
	Create(ctx context.Context, kind models.EntityKind, payload json.RawMessage) (*CreateResult, error)
	Update(ctx context.Context, kind models.EntityKind, id string, payload json.RawMessage) error
	Delete(ctx context.Context, kind models.EntityKind, id string) error

	// Pull surface.
	ListNotes(ctx context.Context, limit int) ([]models.Note, error)
	TaskTree(ctx context.Context) ([]models.TaskNode, error)

	// Ping probes reachability for the connectivity controller.
	Ping(ctx context.Context) error
}
