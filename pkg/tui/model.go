// Package tui renders the campus-safety home screen in the terminal.
package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"CampusSafe/pkg/home"
	"CampusSafe/pkg/logger"
	"CampusSafe/pkg/safety"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const defaultToastDuration = 4 * time.Second

// Options configures a Model.
type Options struct {
	Controller      *home.Controller
	Logger          *logger.Logger
	EmergencyNumber string
	Theme           string
	ToastDuration   time.Duration
	AltScreen       bool
}

type toastKind int

const (
	toastInfo toastKind = iota
	toastSuccess
	toastFailure
)

type toast struct {
	id   int
	kind toastKind
	text string
}

// Messages
type (
	jobDoneMsg      struct{ res home.JobResult }
	toastExpiredMsg struct{ id int }
)

// Model is the Bubble Tea model for the home screen and its emergency
// overlay. Overlay visibility lives in the controller, never here.
type Model struct {
	ctrl   *home.Controller
	logger *logger.Logger
	number string

	styles   Styles
	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	viewport viewport.Model

	homeFocus  focusRing
	modalFocus focusRing

	toast    toast
	toastSeq int
	toastTTL time.Duration

	width    int
	height   int
	ready    bool
	quitting bool
}

// NewModel builds a model around ctrl. A nil controller gets a bare one with
// no seams wired.
func NewModel(opts Options) Model {
	ctrl := opts.Controller
	if ctrl == nil {
		ctrl = home.NewController(home.Options{Logger: opts.Logger})
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	number := opts.EmergencyNumber
	if number == "" {
		number = "911"
	}
	ttl := opts.ToastDuration
	if ttl <= 0 {
		ttl = defaultToastDuration
	}

	styles := NewStyles(opts.Theme)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner

	vp := viewport.New(0, 0)
	vp.KeyMap = viewport.KeyMap{
		PageDown: key.NewBinding(key.WithKeys("pgdown")),
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
	}

	return Model{
		ctrl:       ctrl,
		logger:     log,
		number:     number,
		styles:     styles,
		keys:       newKeyMap(),
		help:       help.New(),
		spinner:    s,
		viewport:   vp,
		homeFocus:  newFocusRing(homeAffordances, AffordSOS),
		modalFocus: newFocusRing(modalAffordances, AffordEmergency),
		toastTTL:   ttl,
	}
}

// Controller returns the screen controller driven by the model.
func (m Model) Controller() *home.Controller { return m.ctrl }

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.ctrl.Overlay() == home.OverlayHidden {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		return m, nil

	case jobDoneMsg:
		m.ctrl.Finish(msg.res)
		cmd := m.showOutcome(msg.res)
		m.refresh()
		return m, cmd

	case toastExpiredMsg:
		if msg.id == m.toast.id {
			m.toast = toast{}
			m.refresh()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.forceQuit):
		return m.quit()
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		m.refresh()
		return m, nil
	}

	if m.ctrl.Overlay() == home.OverlayVisible {
		return m.handleModalKey(msg)
	}
	return m.handleHomeKey(msg)
}

func (m Model) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch {
	case key.Matches(msg, m.keys.quit):
		return m.quit()
	case key.Matches(msg, m.keys.open):
		m.openModal()
	case key.Matches(msg, m.keys.next):
		m.homeFocus.next()
	case key.Matches(msg, m.keys.prev):
		m.homeFocus.prev()
	case key.Matches(msg, m.keys.press):
		cmd = m.press(m.homeFocus.current())
	default:
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	m.refresh()
	return m, cmd
}

func (m Model) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch {
	case key.Matches(msg, m.keys.close):
		m.ctrl.CloseEmergencyModal()
	case key.Matches(msg, m.keys.emergency), key.Matches(msg, m.keys.call):
		cmd = m.start(home.ActionEmergencyCall)
	case key.Matches(msg, m.keys.alert):
		cmd = m.start(home.ActionAlertContacts)
	case key.Matches(msg, m.keys.retry):
		cmd = m.retry()
	case key.Matches(msg, m.keys.next):
		m.modalFocus.next()
	case key.Matches(msg, m.keys.prev):
		m.modalFocus.prev()
	case key.Matches(msg, m.keys.press):
		cmd = m.press(m.modalFocus.current())
	default:
		return m, nil
	}

	m.refresh()
	return m, cmd
}

// press activates an affordance as if it had been tapped.
func (m *Model) press(a Affordance) tea.Cmd {
	switch a {
	case AffordSOS:
		m.openModal()
	case AffordBack:
		m.ctrl.CloseEmergencyModal()
	case AffordEmergency, AffordCall:
		return m.start(home.ActionEmergencyCall)
	case AffordAlertContacts:
		return m.start(home.ActionAlertContacts)
	default:
		if a.visualOnly() {
			m.logger.Debug("%s pressed, not available yet", a)
			return m.notify(toastInfo, a.String()+" is not available yet")
		}
	}
	return nil
}

func (m *Model) openModal() {
	m.ctrl.OpenEmergencyModal()
	m.modalFocus.set(AffordEmergency)
}

// start begins action on the controller and returns the command that runs
// the seam call. Presses while the action is pending are dropped.
func (m *Model) start(action home.Action) tea.Cmd {
	job, err := m.ctrl.Begin(action)
	if err != nil {
		if errors.Is(err, home.ErrRequestPending) {
			return nil
		}
		return m.notify(toastFailure, fmt.Sprintf("Cannot start %s: %v", action, err))
	}
	return runJob(job)
}

func (m *Model) retry() tea.Cmd {
	job, err := m.ctrl.RetryLast()
	switch {
	case errors.Is(err, home.ErrNothingToRetry):
		return m.notify(toastInfo, "Nothing to retry")
	case errors.Is(err, home.ErrRequestPending):
		return nil
	case err != nil:
		return m.notify(toastFailure, fmt.Sprintf("Retry failed: %v", err))
	}
	return runJob(job)
}

// runJob performs the seam call off the UI goroutine.
func runJob(job home.Job) tea.Cmd {
	return func() tea.Msg {
		return jobDoneMsg{res: job.Run()}
	}
}

func (m *Model) showOutcome(res home.JobResult) tea.Cmd {
	req := m.ctrl.Request(res.Action)
	if req.ID != res.ID || req.Pending() {
		return nil
	}
	kind, text := m.outcomeText(req)
	return m.notify(kind, text)
}

func (m Model) outcomeText(req home.Request) (toastKind, string) {
	label := "Contact alert"
	if req.Action == home.ActionEmergencyCall {
		label = "Emergency call"
	}

	switch req.Status {
	case home.StatusSucceeded:
		if req.Action == home.ActionEmergencyCall {
			return toastSuccess, fmt.Sprintf("Emergency call placed to %s", m.number)
		}
		return toastSuccess, "Emergency contacts alerted"
	case home.StatusCanceled:
		return toastFailure, label + " canceled. Retry with r in the SOS panel."
	case home.StatusFailed:
		text := fmt.Sprintf("%s failed: %s.", label, failureReason(req.Err))
		if safety.Retryable(req.Err) {
			text += " Retry with r in the SOS panel."
		}
		return toastFailure, text
	default:
		return toastInfo, label + " " + req.Status.String()
	}
}

func failureReason(err error) string {
	var alertErr *safety.AlertError
	if errors.As(err, &alertErr) && len(alertErr.Failed) > 0 && alertErr.Kind == safety.KindPartial {
		return "could not reach " + strings.Join(alertErr.Failed, ", ")
	}

	if safety.TimedOut(err) {
		return "timed out"
	}

	switch safety.KindOf(err) {
	case safety.KindNotConfigured:
		return "not configured"
	case safety.KindUnreachable:
		return "service unreachable"
	case safety.KindPermissionDenied:
		return "permission denied"
	case safety.KindRejected:
		return "request rejected"
	}
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

// notify shows a toast and schedules its expiry.
func (m *Model) notify(kind toastKind, text string) tea.Cmd {
	m.toastSeq++
	id := m.toastSeq
	m.toast = toast{id: id, kind: kind, text: text}
	return tea.Tick(m.toastTTL, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.ctrl.Unmount()
	m.quitting = true
	return m, tea.Quit
}

// refresh resizes the viewport around the footer and re-renders the base
// view into it.
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.Width = m.width
	m.viewport.Height = max(1, m.height-lipgloss.Height(m.footerView()))
	m.viewport.SetContent(m.homeView())
}
