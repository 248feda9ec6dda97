// Package dispatch provides EmergencyDispatch backends: a logging stub, an
// HTTP telephony gateway, and a Redis work queue.
package dispatch

import (
	"time"

	"CampusSafe/pkg/safety"

	"github.com/google/uuid"
)

// DefaultEmergencyNumber is dialled when none is configured.
const DefaultEmergencyNumber = "911"

// CallEvent is the payload handed to a dispatch backend.
type CallEvent struct {
	RequestID       string    `json:"request_id"`
	Caller          string    `json:"caller"`
	EmergencyNumber string    `json:"emergency_number"`
	Location        string    `json:"location"`
	Building        string    `json:"building"`
	Latitude        string    `json:"latitude"`
	Longitude       string    `json:"longitude"`
	Accuracy        string    `json:"accuracy"`
	Timestamp       time.Time `json:"timestamp"`
}

// Caller describes who is calling and from where. It is fixed for the
// lifetime of a dispatcher.
type Caller struct {
	Profile         safety.Profile
	Location        safety.LocationSnapshot
	EmergencyNumber string
}

func (c Caller) event(now time.Time) CallEvent {
	number := c.EmergencyNumber
	if number == "" {
		number = DefaultEmergencyNumber
	}
	loc := c.Location.WithDefaults()
	return CallEvent{
		RequestID:       uuid.NewString(),
		Caller:          c.Profile.WithDefaults().DisplayName,
		EmergencyNumber: number,
		Location:        loc.Name,
		Building:        loc.Building,
		Latitude:        loc.Latitude,
		Longitude:       loc.Longitude,
		Accuracy:        loc.Accuracy,
		Timestamp:       now.UTC(),
	}
}
