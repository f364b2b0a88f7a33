package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gabapcia/safewatch/internal/safetx"
	"github.com/gabapcia/safewatch/internal/safewatch"

	"github.com/redis/go-redis/v9"
)

const (
	// stateKeyPrefix namespaces the observed-state hashes.
	stateKeyPrefix = "safewatch:state"

	// stateKnownField marks a Safe as seeded even when it has no transactions.
	stateKnownField = "_known"
)

// stateKey builds the key of the hash holding the observed transactions of
// one Safe. Fields are safeTxHashes, values are JSON summaries.
func stateKey(chainPrefix, safe string) string {
	return fmt.Sprintf("%s:%s:%s", stateKeyPrefix, chainPrefix, safe)
}

// Load returns every stored summary of the Safe, or safewatch.ErrNoState
// when the hash does not exist.
func (c *client) Load(ctx context.Context, chainPrefix, safe string) (safewatch.State, error) {
	fields, err := c.conn.HGetAll(ctx, stateKey(chainPrefix, safe)).Result()
	if err != nil {
		return nil, err
	}

	return decodeState(fields)
}

// Save upserts summaries in a single pipeline.
func (c *client) Save(ctx context.Context, chainPrefix, safe string, summaries []safetx.TxSummary) error {
	values, err := encodeSummaries(summaries)
	if err != nil {
		return err
	}

	key := stateKey(chainPrefix, safe)
	_, err = c.conn.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, values...)
		return nil
	})
	return err
}

// decodeState converts the fields of a state hash. An empty hash means the
// Safe was never saved.
func decodeState(fields map[string]string) (safewatch.State, error) {
	if len(fields) == 0 {
		return nil, safewatch.ErrNoState
	}

	state := make(safewatch.State, len(fields))
	for hash, raw := range fields {
		if hash == stateKnownField {
			continue
		}

		var summary safetx.TxSummary
		if err := json.Unmarshal([]byte(raw), &summary); err != nil {
			return nil, fmt.Errorf("decode stored transaction %s: %w", hash, err)
		}
		state[hash] = summary
	}

	return state, nil
}

// encodeSummaries builds the HSET field/value pairs, starting with the
// known marker.
func encodeSummaries(summaries []safetx.TxSummary) ([]any, error) {
	values := make([]any, 0, 2*(len(summaries)+1))
	values = append(values, stateKnownField, "1")
	for _, s := range summaries {
		raw, err := json.Marshal(s)
		if err != nil {
			return nil, err
		}
		values = append(values, s.SafeTxHash, string(raw))
	}

	return values, nil
}

// Ensure the client satisfies the StateStorage interface at compile time.
var _ safewatch.StateStorage = new(client)
