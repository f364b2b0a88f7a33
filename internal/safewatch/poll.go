package safewatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/gabapcia/safewatch/internal/pkg/logger"
	"github.com/gabapcia/safewatch/internal/pkg/resilience/retry"
	"github.com/gabapcia/safewatch/internal/safetx"

	"github.com/google/uuid"
)

// ErrInvalidEventType is returned by Notify for an undeclared event type.
var ErrInvalidEventType = errors.New("invalid event type")

// PollOnce loads the stored state, compares it with the latest page of the
// index and announces every transition. A Safe seen for the first time is
// seeded with its full history and nothing is announced.
//
// Transactions whose announcement failed are not saved, so the next poll
// detects them again.
func (s *service) PollOnce(ctx context.Context) error {
	log := s.log.With("poll.id", uuid.Must(uuid.NewV7()).String())

	prev, err := s.stateStorage.Load(ctx, s.chainPrefix, s.safe)
	if errors.Is(err, ErrNoState) {
		return s.seed(ctx, log)
	}
	if err != nil {
		return err
	}

	var observed []safetx.TxSummary
	for _, cur := range s.index.FetchLatest(ctx) {
		old, seen := prev[cur.SafeTxHash]
		eventType, changed := classify(old, seen, cur)
		if !changed {
			continue
		}

		if err := s.announce(ctx, log, eventType, cur.SafeTxHash); err != nil {
			log.Error(ctx, "cannot announce transaction",
				"event.type", eventType,
				"tx.hash", cur.SafeTxHash,
				"error", err,
			)
			continue
		}

		observed = append(observed, cur)
	}

	if len(observed) == 0 {
		log.Debug(ctx, "no transaction changes")
		return nil
	}

	return s.stateStorage.Save(ctx, s.chainPrefix, s.safe, observed)
}

// seed stores the full history of the Safe without announcing it.
//
// An empty history is not stored: the index reports a failed first page as
// an empty list, and marking the Safe as known then would announce its whole
// first page on the next poll. The seed is retried until a transaction is
// seen.
func (s *service) seed(ctx context.Context, log *logger.Logger) error {
	all := s.index.FetchAll(ctx)
	if len(all) == 0 {
		log.Warn(ctx, "no transaction history to seed, retrying on the next poll")
		return nil
	}

	if err := s.stateStorage.Save(ctx, s.chainPrefix, s.safe, all); err != nil {
		return err
	}

	log.Info(ctx, "seeded observed state", "transactions", len(all))
	return nil
}

func (s *service) Notify(ctx context.Context, eventType safetx.EventType, safeTxHash string) error {
	if !eventType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidEventType, eventType)
	}

	event, err := s.buildEvent(ctx, s.log, eventType, safeTxHash)
	if err != nil {
		return err
	}

	return s.dispatcher.Dispatch(ctx, event)
}

// announce fetches the detail of one transaction and dispatches its event.
func (s *service) announce(ctx context.Context, log *logger.Logger, eventType safetx.EventType, safeTxHash string) error {
	event, err := s.buildEvent(ctx, log, eventType, safeTxHash)
	if err != nil {
		return err
	}

	// Notifier errors are logged by the dispatcher; the event counts as
	// announced either way.
	_ = s.dispatcher.Dispatch(ctx, event)
	return nil
}

// buildEvent fetches the transaction detail and turns it into an Event,
// applying the malicious check and signer names.
func (s *service) buildEvent(ctx context.Context, log *logger.Logger, eventType safetx.EventType, safeTxHash string) (safetx.Event, error) {
	detail, err := retry.Value(ctx, s.retry, func() (safetx.TxDetail[string], error) {
		return s.index.FetchDetailed(ctx, safeTxHash)
	})
	if err != nil {
		return safetx.Event{}, err
	}

	if s.isMalicious(ctx, log, detail) {
		eventType = safetx.EventMalicious
	}

	event := safetx.Event{
		Type:        eventType,
		ChainPrefix: s.chainPrefix,
		Safe:        s.safe,
		Tx:          s.addressBook.ResolveSigners(detail),
	}

	log.Info(ctx, "transaction lifecycle event",
		"event.type", eventType,
		"tx.hash", safeTxHash,
		"tx.nonce", detail.Nonce,
	)

	return event, nil
}

func (s *service) isMalicious(ctx context.Context, log *logger.Logger, tx safetx.TxDetail[string]) bool {
	if s.detector == nil {
		return false
	}

	malicious, err := s.detector.IsMalicious(ctx, s.chainPrefix, s.safe, tx)
	if err != nil {
		log.Error(ctx, "malicious transaction check failed", "tx.hash", tx.SafeTxHash, "error", err)
		return false
	}
	return malicious
}
