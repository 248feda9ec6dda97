// Package home implements the campus-safety home screen controller: the
// emergency overlay state machine and the two emergency seams it drives.
//
// A Controller is owned by a single UI goroutine. Every method must be called
// from that goroutine; only Job.Run is meant to run elsewhere.
package home

import (
	"context"
	"time"

	"CampusSafe/pkg/logger"
	"CampusSafe/pkg/safety"

	"github.com/google/uuid"
)

// Options configures a Controller. Zero values are usable: missing profile
// and location fields get defaults, and a missing seam fails with
// KindNotConfigured when invoked.
type Options struct {
	Profile  safety.Profile
	Location safety.LocationSnapshot
	Dispatch safety.EmergencyDispatch
	Alerter  safety.ContactAlerter
	Logger   *logger.Logger

	// CallTimeout bounds each seam invocation. Zero means no bound beyond
	// the screen's lifetime.
	CallTimeout time.Duration

	// Now is the clock used for request timestamps.
	Now func() time.Time
}

// Controller owns the home screen's view state and request lifecycles.
type Controller struct {
	profile  safety.Profile
	location safety.LocationSnapshot
	dispatch safety.EmergencyDispatch
	alerter  safety.ContactAlerter
	logger   *logger.Logger
	timeout  time.Duration
	now      func() time.Time

	state      ViewState
	requests   map[Action]*Request
	lastFailed *Action

	ctx     context.Context
	cancel  context.CancelFunc
	mounted bool
}

// NewController mounts a screen. The overlay starts Hidden.
func NewController(opts Options) *Controller {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := &Controller{
		profile:  opts.Profile.WithDefaults(),
		location: opts.Location.WithDefaults(),
		dispatch: opts.Dispatch,
		alerter:  opts.Alerter,
		logger:   log,
		timeout:  opts.CallTimeout,
		now:      now,
		requests: map[Action]*Request{
			ActionEmergencyCall: {Action: ActionEmergencyCall},
			ActionAlertContacts: {Action: ActionAlertContacts},
		},
		ctx:     ctx,
		cancel:  cancel,
		mounted: true,
	}
	c.logger.Debug("home screen mounted for %s", c.profile.DisplayName)
	return c
}

// State returns a copy of the current view state.
func (c *Controller) State() ViewState { return c.state }

// Overlay returns the emergency overlay state.
func (c *Controller) Overlay() Overlay { return c.state.Overlay() }

func (c *Controller) Profile() safety.Profile { return c.profile }

func (c *Controller) Location() safety.LocationSnapshot { return c.location }

// Mounted reports whether Unmount has not yet been called.
func (c *Controller) Mounted() bool { return c.mounted }

// OpenEmergencyModal shows the emergency overlay.
func (c *Controller) OpenEmergencyModal() {
	if !c.state.EmergencyModalVisible {
		c.logger.Debug("emergency overlay opened")
	}
	c.state.EmergencyModalVisible = true
}

// CloseEmergencyModal hides the emergency overlay. Used for both the back
// button and a system dismiss request.
func (c *Controller) CloseEmergencyModal() {
	if c.state.EmergencyModalVisible {
		c.logger.Debug("emergency overlay closed")
	}
	c.state.EmergencyModalVisible = false
}

// CallRequest returns the latest emergency call request.
func (c *Controller) CallRequest() Request { return *c.requests[ActionEmergencyCall] }

// AlertRequest returns the latest contact alert request.
func (c *Controller) AlertRequest() Request { return *c.requests[ActionAlertContacts] }

// Request returns the latest request for action.
func (c *Controller) Request(action Action) Request {
	if r, ok := c.requests[action]; ok {
		return *r
	}
	return Request{Action: action}
}

// TriggerEmergencyCall invokes the dispatch seam once and waits for it.
// Overlay visibility is neither required nor changed.
func (c *Controller) TriggerEmergencyCall() error {
	return c.runNow(ActionEmergencyCall)
}

// AlertEmergencyContacts invokes the alert seam once and waits for it.
// Overlay visibility is neither required nor changed.
func (c *Controller) AlertEmergencyContacts() error {
	return c.runNow(ActionAlertContacts)
}

// BeginEmergencyCall starts an emergency call without waiting for it.
func (c *Controller) BeginEmergencyCall() (Job, error) {
	return c.Begin(ActionEmergencyCall)
}

// BeginAlertContacts starts a contact alert without waiting for it.
func (c *Controller) BeginAlertContacts() (Job, error) {
	return c.Begin(ActionAlertContacts)
}

// Begin marks action pending and returns the job that performs it.
func (c *Controller) Begin(action Action) (Job, error) {
	if !c.mounted {
		return Job{}, ErrUnmounted
	}

	req, ok := c.requests[action]
	if !ok {
		return Job{}, ErrUnknownAction
	}
	if req.Pending() {
		c.logger.Debug("%s already pending (%s), ignoring", action, req.ID)
		return Job{}, ErrRequestPending
	}

	attempts := 1
	if req.Status == StatusFailed || req.Status == StatusCanceled {
		attempts = req.Attempts + 1
	}

	*req = Request{
		ID:        uuid.New(),
		Action:    action,
		Status:    StatusPending,
		Attempts:  attempts,
		UpdatedAt: c.now(),
	}

	switch action {
	case ActionEmergencyCall:
		c.logger.Info("Emergency call initiated (request %s, attempt %d, %s, %s)",
			req.ID, attempts, c.location.Label(), c.location.Coordinates())
	case ActionAlertContacts:
		c.logger.Info("Emergency contacts alerted (request %s, attempt %d)", req.ID, attempts)
	}

	return Job{
		ID:      req.ID,
		Action:  action,
		ctx:     c.ctx,
		timeout: c.timeout,
		call:    c.seam(action),
	}, nil
}

// RetryLast restarts the most recently failed action.
func (c *Controller) RetryLast() (Job, error) {
	if c.lastFailed == nil {
		return Job{}, ErrNothingToRetry
	}
	return c.Begin(*c.lastFailed)
}

// LastFailed returns the most recently failed action, if any.
func (c *Controller) LastFailed() (Action, bool) {
	if c.lastFailed == nil {
		return 0, false
	}
	return *c.lastFailed, true
}

// Finish records a job outcome. Results for superseded requests, or arriving
// after unmount, are dropped.
func (c *Controller) Finish(res JobResult) {
	req, ok := c.requests[res.Action]
	if !ok || req.ID != res.ID || !req.Pending() {
		c.logger.Debug("dropping stale %s result %s", res.Action, res.ID)
		return
	}

	req.UpdatedAt = c.now()
	req.Err = res.Err

	switch {
	case res.Err == nil:
		req.Status = StatusSucceeded
		if c.lastFailed != nil && *c.lastFailed == res.Action {
			c.lastFailed = nil
		}
		c.logger.Info("%s %s succeeded", res.Action, res.ID)
	case safety.KindOf(res.Err) == safety.KindCanceled:
		req.Status = StatusCanceled
		action := res.Action
		c.lastFailed = &action
		c.logger.Warn("%s %s canceled: %v", res.Action, res.ID, res.Err)
	default:
		req.Status = StatusFailed
		action := res.Action
		c.lastFailed = &action
		c.logger.Error("%s %s failed: %v", res.Action, res.ID, res.Err)
	}
}

// Unmount tears the screen down: in-flight seam calls are canceled and no
// further actions can start.
func (c *Controller) Unmount() {
	if !c.mounted {
		return
	}
	c.mounted = false
	c.cancel()

	for _, req := range c.requests {
		if req.Pending() {
			req.Status = StatusCanceled
			req.Err = context.Canceled
			req.UpdatedAt = c.now()
		}
	}
	c.logger.Debug("home screen unmounted")
}

func (c *Controller) runNow(action Action) error {
	job, err := c.Begin(action)
	if err != nil {
		return err
	}
	res := job.Run()
	c.Finish(res)
	return res.Err
}

func (c *Controller) seam(action Action) func(ctx context.Context) error {
	switch action {
	case ActionEmergencyCall:
		if c.dispatch == nil {
			return func(context.Context) error {
				return safety.NewDispatchError(safety.KindNotConfigured, nil)
			}
		}
		return c.dispatch.Call
	default:
		if c.alerter == nil {
			return func(context.Context) error {
				return safety.NewAlertError(safety.KindNotConfigured, nil, nil)
			}
		}
		return c.alerter.NotifyAll
	}
}
