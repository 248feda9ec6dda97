package tui

// Affordance is a focusable item on one of the two views.
type Affordance int

const (
	// Base view
	AffordSettings Affordance = iota
	AffordSOS
	AffordReportIncident
	AffordSafetyMode
	AffordReportHistory

	// Emergency overlay
	AffordBack
	AffordEmergency
	AffordCall
	AffordAlertContacts
)

var (
	homeAffordances  = []Affordance{AffordSettings, AffordSOS, AffordReportIncident, AffordSafetyMode, AffordReportHistory}
	modalAffordances = []Affordance{AffordBack, AffordEmergency, AffordCall, AffordAlertContacts}
)

func (a Affordance) String() string {
	switch a {
	case AffordSettings:
		return "Settings"
	case AffordSOS:
		return "Emergency SOS"
	case AffordReportIncident:
		return "Report Incident"
	case AffordSafetyMode:
		return "Safety Mode"
	case AffordReportHistory:
		return "View Report History"
	case AffordBack:
		return "Back"
	case AffordEmergency:
		return "EMERGENCY"
	case AffordCall:
		return "Call"
	case AffordAlertContacts:
		return "Alert Contacts"
	default:
		return "Unknown"
	}
}

// visualOnly reports whether pressing a does nothing beyond a hint.
func (a Affordance) visualOnly() bool {
	switch a {
	case AffordSettings, AffordReportIncident, AffordSafetyMode, AffordReportHistory:
		return true
	}
	return false
}

// focusRing cycles through a fixed list of affordances.
type focusRing struct {
	items []Affordance
	index int
}

func newFocusRing(items []Affordance, initial Affordance) focusRing {
	r := focusRing{items: items}
	r.set(initial)
	return r
}

func (r focusRing) current() Affordance { return r.items[r.index] }

func (r *focusRing) next() { r.index = (r.index + 1) % len(r.items) }

func (r *focusRing) prev() { r.index = (r.index - 1 + len(r.items)) % len(r.items) }

func (r *focusRing) set(a Affordance) {
	for i, item := range r.items {
		if item == a {
			r.index = i
			return
		}
	}
}
