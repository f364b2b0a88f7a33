package safewatch

import (
	"context"
	"errors"
	"maps"
	"sync"

	"github.com/gabapcia/safewatch/internal/safetx"
)

// ErrNoState is returned by StateStorage.Load when nothing was ever saved for
// a Safe.
var ErrNoState = errors.New("no observed state")

// State is the last observed summary of every known transaction, keyed by
// safeTxHash.
type State map[string]safetx.TxSummary

// StateStorage persists the transactions observed for each Safe between polls.
type StateStorage interface {
	// Load returns the stored state of the Safe, or ErrNoState when the Safe
	// was never saved.
	Load(ctx context.Context, chainPrefix, safe string) (State, error)

	// Save upserts the given summaries. Saving an empty slice still marks the
	// Safe as known.
	Save(ctx context.Context, chainPrefix, safe string, summaries []safetx.TxSummary) error
}

// memoryState is the default in-process StateStorage.
type memoryState struct {
	mu    sync.Mutex
	safes map[string]State
}

var _ StateStorage = (*memoryState)(nil)

// NewMemoryState returns a StateStorage that lives as long as the process.
func NewMemoryState() *memoryState {
	return &memoryState{safes: make(map[string]State)}
}

func memoryKey(chainPrefix, safe string) string {
	return chainPrefix + ":" + safe
}

func (m *memoryState) Load(_ context.Context, chainPrefix, safe string) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.safes[memoryKey(chainPrefix, safe)]
	if !ok {
		return nil, ErrNoState
	}
	return maps.Clone(state), nil
}

func (m *memoryState) Save(_ context.Context, chainPrefix, safe string, summaries []safetx.TxSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := memoryKey(chainPrefix, safe)
	state, ok := m.safes[key]
	if !ok {
		state = make(State, len(summaries))
		m.safes[key] = state
	}

	for _, s := range summaries {
		state[s.SafeTxHash] = s
	}
	return nil
}
