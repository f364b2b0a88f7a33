// Package safewatch polls a transaction index for one Safe, compares what it
// sees with the previously observed state and fans lifecycle events out to
// the registered notifiers.
package safewatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gabapcia/safewatch/internal/pkg/logger"
	"github.com/gabapcia/safewatch/internal/pkg/resilience/retry"
	"github.com/gabapcia/safewatch/internal/safetx"
)

// ErrServiceAlreadyStarted is returned if Start is called on a running service.
var ErrServiceAlreadyStarted = errors.New("service already started")

// Service is the polling lifecycle of one watched Safe.
type Service interface {
	// Start polls immediately and then on every interval, in the background,
	// until ctx is canceled or Close is called.
	Start(ctx context.Context) error

	// PollOnce runs a single poll cycle.
	PollOnce(ctx context.Context) error

	// Notify fetches one transaction and sends eventType for it to every
	// notifier, regardless of the observed state. The state is not updated.
	Notify(ctx context.Context, eventType safetx.EventType, safeTxHash string) error

	// Close stops the background polling and waits for the current cycle.
	// It is safe to call Close on a service that was never started.
	Close()
}

// closeFunc stops the polling goroutine and waits for it to exit.
type closeFunc func()

type service struct {
	mu        sync.Mutex
	isStarted bool
	closeFunc closeFunc

	chainPrefix string
	safe        string

	index        safetx.Index
	dispatcher   *Dispatcher
	stateStorage StateStorage
	addressBook  safetx.AddressBook
	detector     MaliciousDetector
	retry        retry.Retry
	interval     time.Duration
	log          *logger.Logger
}

var _ Service = (*service)(nil)

func (s *service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isStarted {
		return ErrServiceAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		s.run(ctx)
	}()

	s.closeFunc = func() {
		cancel()
		<-done
	}
	s.isStarted = true
	return nil
}

func (s *service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closeFunc != nil {
		s.closeFunc()
	}
	s.isStarted = false
	s.closeFunc = nil
}

// run polls until ctx is done. Poll errors are logged; the next tick tries
// again.
func (s *service) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.PollOnce(ctx); err != nil && ctx.Err() == nil {
			s.log.Error(ctx, "poll failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

type config struct {
	stateStorage StateStorage
	addressBook  safetx.AddressBook
	detector     MaliciousDetector
	retry        retry.Retry
	interval     time.Duration
	log          *logger.Logger
}

// Option customizes the service.
type Option func(*config)

// New creates a service watching safe on the chain identified by chainPrefix.
// Events are delivered to every notifier.
//
// Defaults: in-memory state, no signer names, no malicious detection,
// 3 attempts for detail fetches, 30 seconds between polls, process logger.
func New(index safetx.Index, chainPrefix, safe string, notifiers []safetx.Notifier, opts ...Option) *service {
	cfg := config{
		stateStorage: NewMemoryState(),
		interval:     30 * time.Second,
		log:          logger.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	log := cfg.log.With("chain", chainPrefix, "safe", safe)
	if cfg.retry == nil {
		cfg.retry = retry.New(retry.WithOnRetry(func(n uint, err error) {
			log.Warn(context.Background(), "transaction fetch attempt failed", "attempt", n+1, "error", err)
		}))
	}

	return &service{
		chainPrefix:  chainPrefix,
		safe:         safe,
		index:        index,
		dispatcher:   NewDispatcher(log, notifiers...),
		stateStorage: cfg.stateStorage,
		addressBook:  cfg.addressBook,
		detector:     cfg.detector,
		retry:        cfg.retry,
		interval:     cfg.interval,
		log:          log,
	}
}

// WithStateStorage persists observed state in ss instead of memory.
func WithStateStorage(ss StateStorage) Option {
	return func(c *config) {
		c.stateStorage = ss
	}
}

// WithAddressBook names signers in notifications.
func WithAddressBook(b safetx.AddressBook) Option {
	return func(c *config) {
		c.addressBook = b
	}
}

// WithMaliciousDetector enables malicious transaction flagging.
func WithMaliciousDetector(d MaliciousDetector) Option {
	return func(c *config) {
		c.detector = d
	}
}

// WithRetry sets the retry policy for transaction detail fetches.
func WithRetry(r retry.Retry) Option {
	return func(c *config) {
		c.retry = r
	}
}

// WithInterval sets the delay between polls.
func WithInterval(d time.Duration) Option {
	return func(c *config) {
		c.interval = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *config) {
		c.log = l
	}
}
