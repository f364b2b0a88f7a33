package safewatch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gabapcia/safewatch/internal/pkg/logger"
	"github.com/gabapcia/safewatch/internal/safetx"
)

// Dispatcher fans one event out to every registered notifier.
type Dispatcher struct {
	notifiers []safetx.Notifier
	log       *logger.Logger
}

// NewDispatcher creates a Dispatcher over notifiers.
func NewDispatcher(log *logger.Logger, notifiers ...safetx.Notifier) *Dispatcher {
	return &Dispatcher{
		notifiers: notifiers,
		log:       log,
	}
}

// Dispatch sends event to all notifiers concurrently and waits for them.
// A failing notifier does not prevent the others from receiving the event;
// every failure is logged and the joined errors are returned.
func (d *Dispatcher) Dispatch(ctx context.Context, event safetx.Event) error {
	errs := make([]error, len(d.notifiers))

	var wg sync.WaitGroup
	for i, n := range d.notifiers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := n.Send(ctx, event); err != nil {
				d.log.Error(ctx, "notifier failed",
					"notifier", fmt.Sprintf("%T", n),
					"event.type", event.Type,
					"tx.hash", event.Tx.SafeTxHash,
					"error", err,
				)
				errs[i] = err
			}
		}()
	}
	wg.Wait()

	return errors.Join(errs...)
}
