// Package safety holds the data shown on the campus-safety home screen and
// the collaborator seams the screen hands emergencies off to.
package safety

import "strings"

// Default display values, used whenever a field is missing.
const (
	DefaultDisplayName  = "Student"
	DefaultWelcome      = "Welcome back"
	DefaultSafetyLine   = "Stay safe today"
	DefaultLocationName = "Main Campus"
	DefaultBuilding     = "Student Union Building"
	DefaultLatitude     = "40.7829"
	DefaultLongitude    = "-73.9654"
	DefaultAccuracy     = "±3 meters"
)

// Profile is the user shown in the screen header.
type Profile struct {
	DisplayName string `json:"display_name"`
	Welcome     string `json:"welcome,omitempty"`
	SafetyLine  string `json:"safety_line,omitempty"`
}

// DefaultProfile returns the placeholder profile.
func DefaultProfile() Profile {
	return Profile{
		DisplayName: DefaultDisplayName,
		Welcome:     DefaultWelcome,
		SafetyLine:  DefaultSafetyLine,
	}
}

// WithDefaults fills blank fields with their defaults.
func (p Profile) WithDefaults() Profile {
	p.DisplayName = orDefault(p.DisplayName, DefaultDisplayName)
	p.Welcome = orDefault(p.Welcome, DefaultWelcome)
	p.SafetyLine = orDefault(p.SafetyLine, DefaultSafetyLine)
	return p
}

// LocationSnapshot is a fixed location reading. Coordinates are kept as the
// strings they were supplied as and displayed verbatim.
type LocationSnapshot struct {
	Name      string `json:"name"`
	Building  string `json:"building"`
	Latitude  string `json:"latitude" validate:"omitempty,latitude"`
	Longitude string `json:"longitude" validate:"omitempty,longitude"`
	Accuracy  string `json:"accuracy,omitempty"`
}

// DefaultLocation returns the placeholder campus location.
func DefaultLocation() LocationSnapshot {
	return LocationSnapshot{
		Name:      DefaultLocationName,
		Building:  DefaultBuilding,
		Latitude:  DefaultLatitude,
		Longitude: DefaultLongitude,
		Accuracy:  DefaultAccuracy,
	}
}

// WithDefaults fills blank fields with their defaults.
func (l LocationSnapshot) WithDefaults() LocationSnapshot {
	l.Name = orDefault(l.Name, DefaultLocationName)
	l.Building = orDefault(l.Building, DefaultBuilding)
	l.Latitude = orDefault(l.Latitude, DefaultLatitude)
	l.Longitude = orDefault(l.Longitude, DefaultLongitude)
	l.Accuracy = orDefault(l.Accuracy, DefaultAccuracy)
	return l
}

// Coordinates formats the snapshot as "Lat: <lat>, Lng: <lng>".
func (l LocationSnapshot) Coordinates() string {
	return "Lat: " + l.Latitude + ", Lng: " + l.Longitude
}

// Label is the one-line place name used in the emergency panel, e.g.
// "Main Campus - Student Union". A trailing " Building" is dropped.
func (l LocationSnapshot) Label() string {
	building := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(l.Building), " Building"))
	switch {
	case building == "":
		return l.Name
	case l.Name == "":
		return building
	}
	return l.Name + " - " + building
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}
