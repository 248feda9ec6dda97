package alert

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"CampusSafe/pkg/logger"
	"CampusSafe/pkg/safety"
	"CampusSafe/pkg/telegram"

	"golang.org/x/time/rate"
)

// Telegram allows roughly 30 messages per second per bot.
const (
	sendRate  = rate.Limit(20)
	sendBurst = 5
)

// Sender delivers a message to one Telegram chat. *telegram.Bot satisfies it.
type Sender interface {
	SendMessageToChat(chatID int64, text string) error
}

var _ Sender = (*telegram.Bot)(nil)

// TelegramAlerter messages every contact with the user's location.
type TelegramAlerter struct {
	sender   Sender
	contacts []Contact
	subject  Subject
	limiter  *rate.Limiter
	logger   *logger.Logger
	now      func() time.Time
}

func NewTelegramAlerter(sender Sender, contacts []Contact, subject Subject, log *logger.Logger) *TelegramAlerter {
	if log == nil {
		log = logger.Nop()
	}
	return &TelegramAlerter{
		sender:   sender,
		contacts: contacts,
		subject:  subject,
		limiter:  rate.NewLimiter(sendRate, sendBurst),
		logger:   log,
		now:      time.Now,
	}
}

// NotifyAll sends the alert to each contact in order. Every contact is tried
// even after a failure; the error lists who was missed.
func (a *TelegramAlerter) NotifyAll(ctx context.Context) error {
	if a.sender == nil || len(a.contacts) == 0 {
		return safety.NewAlertError(safety.KindNotConfigured, nil, errors.New("no emergency contacts configured"))
	}

	text := a.message()

	var failed []string
	var errs []error
	for _, c := range a.contacts {
		if err := a.limiter.Wait(ctx); err != nil {
			// The limiter gives up early when the next slot lands past the deadline.
			if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				err = fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
			}
			return safety.NewAlertError(safety.KindUnreachable, append(failed, remaining(a.contacts, c)...), err)
		}
		if err := a.sender.SendMessageToChat(c.ChatID, text); err != nil {
			a.logger.Warn("alert to %s (%d) failed: %v", c.Name, c.ChatID, err)
			failed = append(failed, c.Name)
			errs = append(errs, fmt.Errorf("%s: %w", c.Name, err))
			continue
		}
		a.logger.Info("alert delivered to %s", c.Name)
	}

	switch {
	case len(failed) == 0:
		return nil
	case len(failed) == len(a.contacts):
		return safety.NewAlertError(safety.KindUnreachable, failed, errors.Join(errs...))
	default:
		return safety.NewAlertError(safety.KindPartial, failed, errors.Join(errs...))
	}
}

func (a *TelegramAlerter) message() string {
	p := a.subject.Profile.WithDefaults()
	loc := a.subject.Location.WithDefaults()

	var b strings.Builder
	fmt.Fprintf(&b, "*EMERGENCY ALERT*\n\n")
	fmt.Fprintf(&b, "%s has triggered an emergency alert.\n\n", telegram.EscapeMarkdown(p.DisplayName))
	fmt.Fprintf(&b, "Location: %s\n", telegram.EscapeMarkdown(loc.Label()))
	fmt.Fprintf(&b, "%s\n", loc.Coordinates())
	fmt.Fprintf(&b, "Accuracy: %s\n", loc.Accuracy)
	fmt.Fprintf(&b, "Time: %s", a.now().Format("2006-01-02 15:04 MST"))
	return b.String()
}

// remaining returns the names from c onwards.
func remaining(contacts []Contact, from Contact) []string {
	var names []string
	found := false
	for _, c := range contacts {
		if c == from {
			found = true
		}
		if found {
			names = append(names, c.Name)
		}
	}
	return names
}
