package dispatch

import (
	"context"

	"CampusSafe/pkg/logger"
	"CampusSafe/pkg/safety"
)

// LogDispatcher records the intent to call and reports success. It places no
// call; it is what runs when no gateway or queue is configured.
type LogDispatcher struct {
	caller Caller
	logger *logger.Logger
}

func NewLogDispatcher(caller Caller, log *logger.Logger) *LogDispatcher {
	if log == nil {
		log = logger.Nop()
	}
	return &LogDispatcher{caller: caller, logger: log}
}

func (d *LogDispatcher) Call(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return safety.NewDispatchError(safety.KindCanceled, err)
	}
	loc := d.caller.Location.WithDefaults()
	d.logger.Info("Emergency call initiated (dry run): would dial %s from %s, %s",
		numberOrDefault(d.caller.EmergencyNumber), loc.Label(), loc.Coordinates())
	return nil
}

func numberOrDefault(n string) string {
	if n == "" {
		return DefaultEmergencyNumber
	}
	return n
}
