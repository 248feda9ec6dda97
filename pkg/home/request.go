package home

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrRequestPending is returned when an action is started while the same
	// action is still in flight. The duplicate press is dropped.
	ErrRequestPending = errors.New("request already pending")

	// ErrUnmounted is returned once the screen has been torn down.
	ErrUnmounted = errors.New("screen unmounted")

	// ErrNothingToRetry is returned by RetryLast when no action has failed.
	ErrNothingToRetry = errors.New("no failed action to retry")

	ErrUnknownAction = errors.New("unknown action")
)

// Action identifies one of the emergency seams.
type Action int

const (
	ActionEmergencyCall Action = iota
	ActionAlertContacts
)

func (a Action) String() string {
	switch a {
	case ActionEmergencyCall:
		return "emergency call"
	case ActionAlertContacts:
		return "contact alert"
	default:
		return "unknown action"
	}
}

// RequestStatus is the lifecycle of one seam invocation.
type RequestStatus int

const (
	StatusIdle RequestStatus = iota
	StatusPending
	StatusSucceeded
	StatusFailed
	StatusCanceled
)

func (s RequestStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusCanceled:
		return "canceled"
	default:
		return "idle"
	}
}

// Request records the latest invocation of an action.
type Request struct {
	ID        uuid.UUID
	Action    Action
	Status    RequestStatus
	Err       error
	Attempts  int
	UpdatedAt time.Time
}

// Pending reports whether the request is in flight.
func (r Request) Pending() bool { return r.Status == StatusPending }

// Job is a started seam invocation. Run may be called from any goroutine; it
// touches no controller state. Hand the result back through Controller.Finish.
type Job struct {
	ID     uuid.UUID
	Action Action

	ctx     context.Context
	timeout time.Duration
	call    func(ctx context.Context) error
}

// JobResult is the outcome of Job.Run.
type JobResult struct {
	ID     uuid.UUID
	Action Action
	Err    error
}

// Run performs the seam call, bounded by the controller's lifetime and the
// configured per-call timeout.
func (j Job) Run() JobResult {
	ctx := j.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	err := j.call(ctx)
	return JobResult{ID: j.ID, Action: j.Action, Err: err}
}
