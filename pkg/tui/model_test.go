package tui

import (
	"context"
	"errors"
	"testing"

	"CampusSafe/pkg/home"
	"CampusSafe/pkg/safety"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seamCounter struct {
	calls  int
	alerts int
	callFn func() error
	alrtFn func() error
}

func (s *seamCounter) options() home.Options {
	return home.Options{
		Profile: safety.Profile{DisplayName: "ILHAM FAKHRI BIN MOHD FADHIL"},
		Dispatch: safety.DispatchFunc(func(context.Context) error {
			s.calls++
			if s.callFn != nil {
				return s.callFn()
			}
			return nil
		}),
		Alerter: safety.AlertFunc(func(context.Context) error {
			s.alerts++
			if s.alrtFn != nil {
				return s.alrtFn()
			}
			return nil
		}),
	}
}

func newTestModel(t *testing.T, opts home.Options) Model {
	t.Helper()
	ctrl := home.NewController(opts)
	t.Cleanup(ctrl.Unmount)

	m := NewModel(Options{Controller: ctrl, EmergencyNumber: "911"})
	m, _ = send(m, tea.WindowSizeMsg{Width: 80, Height: 60})
	return m
}

func send(m Model, msg tea.Msg) (Model, tea.Cmd) {
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func press(m Model, keys ...string) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		m, cmd = send(m, keyMsg(k))
	}
	return m, cmd
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// finishJob runs the seam command synchronously and feeds its result back.
func finishJob(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	done, ok := msg.(jobDoneMsg)
	require.True(t, ok, "expected jobDoneMsg, got %T", msg)
	m, _ = send(m, done)
	return m
}

func TestHomeViewLayout(t *testing.T) {
	var seams seamCounter
	m := newTestModel(t, seams.options())

	view := m.View()
	for _, want := range []string{
		"Welcome back",
		"ILHAM FAKHRI BIN MOHD FADHIL",
		"Stay safe today",
		"Emergency SOS",
		"Report Incident",
		"Safety Mode",
		"Tap to activate",
		"Current Location",
		"Main Campus",
		"Student Union Building",
		"Quick Access",
		"View Report History",
	} {
		assert.Contains(t, view, want)
	}
	assert.NotContains(t, view, "Emergency Report")
	assert.Equal(t, home.OverlayHidden, m.Controller().Overlay())
}

func TestViewBeforeResize(t *testing.T) {
	m := NewModel(Options{})
	defer m.Controller().Unmount()

	assert.Contains(t, m.View(), "Loading")
}

func TestOpenAndCloseModal(t *testing.T) {
	var seams seamCounter
	m := newTestModel(t, seams.options())

	m, _ = press(m, "s")
	require.Equal(t, home.OverlayVisible, m.Controller().Overlay())

	view := m.View()
	for _, want := range []string{
		"Emergency Report",
		"Press and hold to activate emergency protocol",
		"EMERGENCY",
		"Your Location",
		"Main Campus - Student Union",
		"Lat: 40.7829, Lng: -73.9654",
		"Accuracy: ±3 meters",
		"Quick Actions",
		"Call 911",
		"Alert Contacts",
	} {
		assert.Contains(t, view, want)
	}

	m, _ = press(m, "esc")
	assert.Equal(t, home.OverlayHidden, m.Controller().Overlay())

	m, _ = press(m, "s", "backspace")
	assert.Equal(t, home.OverlayHidden, m.Controller().Overlay())
	assert.Zero(t, seams.calls)
	assert.Zero(t, seams.alerts)
}

func TestEnterOnFocusedSOSOpensModal(t *testing.T) {
	var seams seamCounter
	m := newTestModel(t, seams.options())

	require.Equal(t, AffordSOS, m.homeFocus.current())
	m, _ = press(m, "enter")
	assert.Equal(t, home.OverlayVisible, m.Controller().Overlay())

	// Back is one step before EMERGENCY.
	m, _ = press(m, "shift+tab", " ")
	assert.Equal(t, home.OverlayHidden, m.Controller().Overlay())
}

func TestEmergencyKeyCallsDispatchOnce(t *testing.T) {
	var seams seamCounter
	m := newTestModel(t, seams.options())

	m, cmd := press(m, "s", "e")
	require.True(t, m.Controller().CallRequest().Pending())
	assert.Contains(t, m.View(), "Contacting emergency services")

	m = finishJob(t, m, cmd)
	assert.Equal(t, 1, seams.calls)
	assert.Equal(t, home.StatusSucceeded, m.Controller().CallRequest().Status)
	assert.Contains(t, m.View(), "Emergency call placed to 911")
	assert.Equal(t, home.OverlayVisible, m.Controller().Overlay())
}

func TestQuickActionsViaFocus(t *testing.T) {
	var seams seamCounter
	m := newTestModel(t, seams.options())

	// EMERGENCY -> Call -> Alert Contacts
	m, cmd := press(m, "s", "tab", "tab", "enter")
	m = finishJob(t, m, cmd)

	assert.Equal(t, 1, seams.alerts)
	assert.Zero(t, seams.calls)
	assert.Contains(t, m.View(), "Emergency contacts alerted")
}

func TestDuplicatePressIsDropped(t *testing.T) {
	var seams seamCounter
	m := newTestModel(t, seams.options())

	m, first := press(m, "s", "e")
	m, second := press(m, "c")
	assert.Nil(t, second)

	finishJob(t, m, first)
	assert.Equal(t, 1, seams.calls)
}

func TestAlertFailureOffersRetry(t *testing.T) {
	seams := seamCounter{}
	seams.alrtFn = func() error {
		if seams.alerts == 1 {
			return safety.NewAlertError(safety.KindPartial, []string{"Mum"}, errors.New("chat not found"))
		}
		return nil
	}
	m := newTestModel(t, seams.options())

	m, cmd := press(m, "s", "a")
	m = finishJob(t, m, cmd)

	view := m.View()
	assert.Contains(t, view, "could not reach Mum")
	assert.Contains(t, view, "Retry with r in the SOS panel")
	assert.Equal(t, home.StatusFailed, m.Controller().AlertRequest().Status)

	m, cmd = press(m, "r")
	m = finishJob(t, m, cmd)

	assert.Equal(t, 2, seams.alerts)
	assert.Equal(t, home.StatusSucceeded, m.Controller().AlertRequest().Status)
	assert.Contains(t, m.View(), "Emergency contacts alerted")
}

func TestNotConfiguredHasNoRetryHint(t *testing.T) {
	m := newTestModel(t, home.Options{})

	m, cmd := press(m, "s", "e")
	m = finishJob(t, m, cmd)

	view := m.View()
	assert.Contains(t, view, "Emergency call failed: not configured.")
	assert.NotContains(t, view, "Retry with r in the SOS panel")
}

func TestRetryWithNothingFailed(t *testing.T) {
	var seams seamCounter
	m := newTestModel(t, seams.options())

	m, _ = press(m, "s", "r")
	assert.Contains(t, m.View(), "Nothing to retry")
	assert.Zero(t, seams.calls)
}

func TestRetryIgnoredOnBaseView(t *testing.T) {
	seams := seamCounter{}
	seams.callFn = func() error {
		return safety.NewDispatchError(safety.KindUnreachable, errors.New("dial tcp"))
	}
	m := newTestModel(t, seams.options())

	m, cmd := press(m, "s", "e")
	m = finishJob(t, m, cmd)
	require.Equal(t, home.StatusFailed, m.Controller().CallRequest().Status)

	m, _ = press(m, "esc")
	require.Equal(t, home.OverlayHidden, m.Controller().Overlay())

	m, cmd = press(m, "r")
	assert.Nil(t, cmd)
	assert.Equal(t, 1, seams.calls)
	assert.Equal(t, home.StatusFailed, m.Controller().CallRequest().Status)
	assert.Equal(t, home.OverlayHidden, m.Controller().Overlay())

	m, cmd = press(m, "s", "r")
	m = finishJob(t, m, cmd)
	assert.Equal(t, 2, seams.calls)
}

func TestVisualOnlyAffordance(t *testing.T) {
	var seams seamCounter
	m := newTestModel(t, seams.options())

	m, cmd := press(m, "tab", "enter")
	assert.NotNil(t, cmd)
	assert.Equal(t, AffordReportIncident, m.homeFocus.current())
	assert.Contains(t, m.View(), "Report Incident is not available yet")
	assert.Equal(t, home.OverlayHidden, m.Controller().Overlay())
	assert.Zero(t, seams.calls)
}

func TestToastExpiry(t *testing.T) {
	var seams seamCounter
	m := newTestModel(t, seams.options())

	m, _ = press(m, "s", "r")
	id := m.toast.id
	require.NotZero(t, id)

	m, _ = send(m, toastExpiredMsg{id: id + 1})
	assert.NotEmpty(t, m.toast.text, "stale expiry must not clear a newer toast")

	m, _ = send(m, toastExpiredMsg{id: id})
	assert.Empty(t, m.toast.text)
	assert.NotContains(t, m.View(), "Nothing to retry")
}

func TestQuitUnmounts(t *testing.T) {
	var seams seamCounter
	m := newTestModel(t, seams.options())

	m, cmd := press(m, "q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.False(t, m.Controller().Mounted())
	assert.Empty(t, m.View())
}

func TestQuitKeyIgnoredInModal(t *testing.T) {
	var seams seamCounter
	m := newTestModel(t, seams.options())

	m, cmd := press(m, "s", "q")
	assert.Nil(t, cmd)
	assert.True(t, m.Controller().Mounted())

	m, cmd = press(m, "ctrl+c")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.False(t, m.Controller().Mounted())
}

func TestQuitCancelsInFlightCall(t *testing.T) {
	started := make(chan struct{})
	m := newTestModel(t, home.Options{
		Dispatch: safety.DispatchFunc(func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			return safety.NewDispatchError(safety.KindUnreachable, ctx.Err())
		}),
	})

	m, cmd := press(m, "s", "e")
	require.NotNil(t, cmd)

	results := make(chan tea.Msg, 1)
	go func() { results <- cmd() }()
	<-started

	m, _ = press(m, "ctrl+c")
	msg := <-results
	done, ok := msg.(jobDoneMsg)
	require.True(t, ok)
	assert.Equal(t, safety.KindCanceled, safety.KindOf(done.res.Err))
	assert.Equal(t, home.StatusCanceled, m.Controller().CallRequest().Status)
}

func TestHelpToggle(t *testing.T) {
	var seams seamCounter
	m := newTestModel(t, seams.options())

	assert.NotContains(t, m.View(), "ctrl+c")
	m, _ = press(m, "?")
	assert.True(t, m.help.ShowAll)
	assert.Contains(t, m.View(), "ctrl+c")
	assert.NotContains(t, m.View(), "retry", "retry is only bound inside the SOS panel")
}

func TestBackArrowClosesPanel(t *testing.T) {
	var seams seamCounter
	m := newTestModel(t, seams.options())

	m, _ = press(m, "s")
	unfocused := m.View()
	assert.Contains(t, unfocused, "←")

	m, _ = press(m, "shift+tab")
	require.Equal(t, AffordBack, m.modalFocus.current())
	assert.Contains(t, m.View(), "←")

	m, _ = press(m, "enter")
	assert.Equal(t, home.OverlayHidden, m.Controller().Overlay())
	assert.Zero(t, seams.calls)
}

func TestFocusRingWraps(t *testing.T) {
	r := newFocusRing(homeAffordances, AffordSettings)
	r.prev()
	assert.Equal(t, AffordReportHistory, r.current())
	r.next()
	assert.Equal(t, AffordSettings, r.current())

	r.set(Affordance(99))
	assert.Equal(t, AffordSettings, r.current(), "unknown affordance keeps focus")
}

func TestOutcomeText(t *testing.T) {
	m := NewModel(Options{EmergencyNumber: "999"})
	defer m.Controller().Unmount()

	tests := []struct {
		name string
		req  home.Request
		kind toastKind
		want string
	}{
		{
			name: "call succeeded",
			req:  home.Request{Action: home.ActionEmergencyCall, Status: home.StatusSucceeded},
			kind: toastSuccess,
			want: "Emergency call placed to 999",
		},
		{
			name: "call unreachable",
			req: home.Request{Action: home.ActionEmergencyCall, Status: home.StatusFailed,
				Err: safety.NewDispatchError(safety.KindUnreachable, errors.New("dial tcp"))},
			kind: toastFailure,
			want: "Emergency call failed: service unreachable. Retry with r in the SOS panel.",
		},
		{
			name: "call timed out",
			req: home.Request{Action: home.ActionEmergencyCall, Status: home.StatusFailed,
				Err: safety.NewDispatchError(safety.KindUnreachable, context.DeadlineExceeded)},
			kind: toastFailure,
			want: "Emergency call failed: timed out. Retry with r in the SOS panel.",
		},
		{
			name: "call forbidden",
			req: home.Request{Action: home.ActionEmergencyCall, Status: home.StatusFailed,
				Err: safety.NewDispatchError(safety.KindPermissionDenied, errors.New("403"))},
			kind: toastFailure,
			want: "Emergency call failed: permission denied.",
		},
		{
			name: "alert canceled",
			req:  home.Request{Action: home.ActionAlertContacts, Status: home.StatusCanceled},
			kind: toastFailure,
			want: "Contact alert canceled. Retry with r in the SOS panel.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, text := m.outcomeText(tt.req)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.want, text)
		})
	}
}
