package tui

import (
	"strings"

	"CampusSafe/pkg/home"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

const (
	maxContentWidth = 64
	minContentWidth = 32
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "\n  Loading..."
	}

	footer := m.footerView()
	if m.ctrl.Overlay() == home.OverlayVisible {
		body := lipgloss.Place(m.width, max(1, m.height-lipgloss.Height(footer)),
			lipgloss.Center, lipgloss.Center, m.modalView())
		return lipgloss.JoinVertical(lipgloss.Left, body, footer)
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), footer)
}

func (m Model) contentWidth() int {
	w := m.width - 2
	if w > maxContentWidth {
		w = maxContentWidth
	}
	if w < minContentWidth {
		w = minContentWidth
	}
	return w
}

// button renders a bordered affordance, highlighted when focused.
func (m Model) button(a Affordance, label string, width int) string {
	style := m.styles.Button
	if m.focused(a) {
		style = m.styles.Focused
	}
	if width > 0 {
		style = style.Width(width)
	}
	return style.Render(label)
}

func (m Model) focused(a Affordance) bool {
	if m.ctrl.Overlay() == home.OverlayVisible {
		return m.modalFocus.current() == a
	}
	return m.homeFocus.current() == a
}

func (m Model) homeView() string {
	s := m.styles
	w := m.contentWidth()
	p := m.ctrl.Profile()
	loc := m.ctrl.Location()

	// Header
	avatar := s.Icon.Render("(◉)")
	settings := m.button(AffordSettings, "⚙", 0)
	textWidth := max(10, w-lipgloss.Width(avatar)-lipgloss.Width(settings)-2)
	profile := lipgloss.JoinVertical(lipgloss.Left,
		s.Welcome.Render(p.Welcome),
		s.Name.Render(wordwrap.String(p.DisplayName, textWidth)),
		s.Subtle.Render(p.SafetyLine),
	)
	left := lipgloss.JoinHorizontal(lipgloss.Top, avatar, " ", profile)
	gap := max(1, w-lipgloss.Width(left)-lipgloss.Width(settings))
	header := lipgloss.JoinHorizontal(lipgloss.Top, left, strings.Repeat(" ", gap), settings)

	// Emergency SOS
	sosStyle := s.SOS
	if m.focused(AffordSOS) {
		sosStyle = s.SOSFocused
	}
	sos := sosStyle.Width(w - 2).Render("⚠\nEmergency SOS")

	report := m.button(AffordReportIncident, "⚑  Report Incident", w-2)

	// Safety mode
	safetyCard := s.Card
	if m.focused(AffordSafetyMode) {
		safetyCard = safetyCard.BorderForeground(AccentColor)
	}
	toggle := s.Toggle.Render("(●   )")
	safetyText := lipgloss.JoinVertical(lipgloss.Left,
		s.Heading.Render("⛨  Safety Mode"),
		s.Subtle.Render("   Tap to activate"),
	)
	safetyGap := max(1, w-4-lipgloss.Width(safetyText)-lipgloss.Width(toggle))
	safetyMode := safetyCard.Width(w - 2).Render(
		lipgloss.JoinHorizontal(lipgloss.Center, safetyText, strings.Repeat(" ", safetyGap), toggle))

	// Current location
	locationTitle := s.Heading.Render("⌖  Current Location")
	locationCard := s.Card.Width(w - 2).Render(lipgloss.JoinHorizontal(lipgloss.Top,
		s.Icon.Render("◎  "),
		lipgloss.JoinVertical(lipgloss.Left,
			s.Heading.Render(loc.Name),
			s.Subtle.Render(loc.Building),
		),
	))

	// Quick access
	quickTitle := s.Heading.Render("Quick Access")
	history := m.button(AffordReportHistory, "◷  View Report History", w-2)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		sos,
		"",
		report,
		"",
		safetyMode,
		"",
		locationTitle,
		locationCard,
		"",
		quickTitle,
		history,
	)
}

func (m Model) modalView() string {
	s := m.styles
	w := min(m.contentWidth(), max(minContentWidth, m.width-6))
	inner := w - 6
	loc := m.ctrl.Location()

	back := m.styles.Back.Render("←")
	if m.focused(AffordBack) {
		back = m.styles.Focused.Render("←")
	}
	title := s.Heading.Foreground(DangerColor).Render("Emergency Report")
	titleGap := max(1, (inner-lipgloss.Width(title))/2-lipgloss.Width(back))
	header := lipgloss.JoinHorizontal(lipgloss.Center, back, strings.Repeat(" ", titleGap), title)

	// SOS card
	emergency := s.Emergency
	if m.focused(AffordEmergency) {
		emergency = emergency.Underline(true).Background(DangerDark)
	}
	sosCard := s.DangerCard.Width(inner).Align(lipgloss.Center).Render(lipgloss.JoinVertical(lipgloss.Center,
		s.Spinner.Render("⚠"),
		s.Heading.Render("Emergency SOS"),
		s.Subtle.Render(wordwrap.String("Press and hold to activate emergency protocol", inner-2)),
		"",
		emergency.Render("✱ EMERGENCY"),
	))

	// Location card
	locationCard := s.Card.Width(inner).Render(lipgloss.JoinVertical(lipgloss.Left,
		s.Icon.Render("◉ ")+s.Heading.Render("Your Location"),
		s.Heading.Render(wordwrap.String(loc.Label(), inner-2)),
		s.Subtle.Render(loc.Coordinates()),
		s.Subtle.Render("Accuracy: "+loc.Accuracy),
	))

	// Quick actions
	half := (inner - 7) / 2
	call := m.button(AffordCall, "☎  Call "+m.number, half)
	alert := m.button(AffordAlertContacts, "⚇  Alert Contacts", half)
	actions := s.Card.Width(inner).Render(lipgloss.JoinVertical(lipgloss.Left,
		s.Heading.Render("Quick Actions"),
		lipgloss.JoinHorizontal(lipgloss.Top, call, " ", alert),
	))

	return s.Modal.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		sosCard,
		locationCard,
		actions,
	))
}

// footerView renders the status line (spinner and toast) and the help bar.
func (m Model) footerView() string {
	var status []string

	if m.ctrl.CallRequest().Pending() {
		status = append(status, m.spinner.View()+" Contacting emergency services...")
	}
	if m.ctrl.AlertRequest().Pending() {
		status = append(status, m.spinner.View()+" Alerting emergency contacts...")
	}

	if m.toast.text != "" {
		style := m.styles.ToastInfo
		switch m.toast.kind {
		case toastSuccess:
			style = m.styles.ToastOK
		case toastFailure:
			style = m.styles.ToastError
		}
		status = append(status, style.Render(wordwrap.String(m.toast.text, max(20, m.width-4))))
	}

	var keys help.KeyMap = homeKeys{m.keys}
	if m.ctrl.Overlay() == home.OverlayVisible {
		keys = modalKeys{m.keys}
	}
	helpBar := m.styles.Help.Render(m.help.View(keys))

	return lipgloss.JoinVertical(lipgloss.Left, append(status, helpBar)...)
}
