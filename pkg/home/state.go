package home

// Overlay is the visibility state of the emergency-response panel.
type Overlay int

const (
	OverlayHidden Overlay = iota
	OverlayVisible
)

func (o Overlay) String() string {
	if o == OverlayVisible {
		return "Visible"
	}
	return "Hidden"
}

// ViewState is everything the screen remembers between events. The modal flag
// is the only source of truth for whether the overlay is drawn.
type ViewState struct {
	EmergencyModalVisible bool
}

// Overlay returns the overlay state derived from the modal flag.
func (s ViewState) Overlay() Overlay {
	if s.EmergencyModalVisible {
		return OverlayVisible
	}
	return OverlayHidden
}
