// Package alert provides ContactAlerter backends.
package alert

import (
	"context"

	"CampusSafe/pkg/logger"
	"CampusSafe/pkg/safety"
)

// Contact is an emergency contact reachable over Telegram.
type Contact struct {
	Name   string `json:"name" validate:"required"`
	ChatID int64  `json:"chat_id" validate:"required"`
}

// Subject is who the alert is about.
type Subject struct {
	Profile  safety.Profile
	Location safety.LocationSnapshot
}

// LogAlerter records the intent to alert contacts and reports success.
type LogAlerter struct {
	contacts []Contact
	logger   *logger.Logger
}

func NewLogAlerter(contacts []Contact, log *logger.Logger) *LogAlerter {
	if log == nil {
		log = logger.Nop()
	}
	return &LogAlerter{contacts: contacts, logger: log}
}

func (a *LogAlerter) NotifyAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return safety.NewAlertError(safety.KindCanceled, nil, err)
	}
	a.logger.Info("Emergency contacts alerted (dry run): %d contact(s)", len(a.contacts))
	return nil
}
