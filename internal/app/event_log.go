package app

import (
	"context"
	"errors"

	"github.com/example/nsfwsweep/internal/ports/secondary"
)

// MultiEventLog fans each event out to every sink.
// All sinks are attempted; their errors are joined.
type MultiEventLog []secondary.EventLog

// Record implements secondary.EventLog.
func (m MultiEventLog) Record(ctx context.Context, event secondary.Event) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Record(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ secondary.EventLog = MultiEventLog(nil)
