package tui

import "github.com/charmbracelet/lipgloss"

// Theme colors - campus "Navy & Signal Red" palette
var (
	PrimaryColor   = lipgloss.Color("#1E3A8A") // Navy
	SecondaryColor = lipgloss.Color("#0F172A") // Slate 900
	AccentColor    = lipgloss.Color("#3B82F6") // Blue 500
	SuccessColor   = lipgloss.Color("#059669") // Emerald 600
	WarningColor   = lipgloss.Color("#D97706") // Amber 600
	DangerColor    = lipgloss.Color("#DC2626") // Red 600
	DangerDark     = lipgloss.Color("#B91C1C") // Red 700

	Gray100 = lipgloss.Color("#F3F4F6")
	Gray300 = lipgloss.Color("#D1D5DB")
	Gray500 = lipgloss.Color("#6B7280")
	Gray700 = lipgloss.Color("#374151")
	White   = lipgloss.Color("#FFFFFF")
)

// palette holds the colors that differ between light and dark terminals.
type palette struct {
	text    lipgloss.Color
	subtle  lipgloss.Color
	border  lipgloss.Color
	heading lipgloss.Color
}

var (
	lightPalette = palette{text: SecondaryColor, subtle: Gray500, border: Gray300, heading: PrimaryColor}
	darkPalette  = palette{text: Gray100, subtle: Gray300, border: Gray700, heading: AccentColor}
)

// Styles is the full set of rendering styles for one theme.
type Styles struct {
	Welcome    lipgloss.Style
	Name       lipgloss.Style
	Subtle     lipgloss.Style
	Heading    lipgloss.Style
	Icon       lipgloss.Style
	SOS        lipgloss.Style
	SOSFocused lipgloss.Style
	Button     lipgloss.Style
	Focused    lipgloss.Style
	Card       lipgloss.Style
	DangerCard lipgloss.Style
	Emergency  lipgloss.Style
	Toggle     lipgloss.Style
	Modal      lipgloss.Style
	Back       lipgloss.Style
	Spinner    lipgloss.Style
	ToastOK    lipgloss.Style
	ToastError lipgloss.Style
	ToastInfo  lipgloss.Style
	Help       lipgloss.Style
}

// NewStyles builds the styles for theme ("light" or "dark"). Unknown themes
// render light.
func NewStyles(theme string) Styles {
	p := lightPalette
	if theme == "dark" {
		p = darkPalette
	}

	button := lipgloss.NewStyle().
		Foreground(p.text).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.border).
		Padding(0, 2)

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.border).
		Padding(0, 1)

	sos := lipgloss.NewStyle().
		Bold(true).
		Foreground(White).
		Background(DangerColor).
		Border(lipgloss.ThickBorder()).
		BorderForeground(DangerColor).
		Align(lipgloss.Center).
		Padding(1, 2)

	return Styles{
		Welcome: lipgloss.NewStyle().Foreground(p.subtle),
		Name:    lipgloss.NewStyle().Bold(true).Foreground(p.heading),
		Subtle:  lipgloss.NewStyle().Foreground(p.subtle),
		Heading: lipgloss.NewStyle().Bold(true).Foreground(p.text),
		Icon:    lipgloss.NewStyle().Foreground(AccentColor).Bold(true),

		SOS:        sos,
		SOSFocused: sos.BorderForeground(WarningColor).Background(DangerDark),

		Button:  button,
		Focused: button.BorderForeground(AccentColor).Foreground(AccentColor).Bold(true),

		Card:       card,
		DangerCard: card.BorderForeground(DangerColor),
		Emergency: lipgloss.NewStyle().
			Bold(true).
			Foreground(White).
			Background(DangerColor).
			Padding(0, 3),
		Toggle: lipgloss.NewStyle().Foreground(p.subtle),

		Modal: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(DangerColor).
			Padding(0, 2),
		Back: button.Foreground(AccentColor),

		Spinner:    lipgloss.NewStyle().Foreground(DangerColor),
		ToastOK:    lipgloss.NewStyle().Bold(true).Foreground(White).Background(SuccessColor).Padding(0, 1),
		ToastError: lipgloss.NewStyle().Bold(true).Foreground(White).Background(DangerColor).Padding(0, 1),
		ToastInfo:  lipgloss.NewStyle().Foreground(White).Background(Gray700).Padding(0, 1),
		Help:       lipgloss.NewStyle().Foreground(Gray500).Padding(0, 1),
	}
}
