package slack

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gabapcia/safewatch/internal/pkg/logger"
	transporthttp "github.com/gabapcia/safewatch/internal/pkg/transport/http"
	"github.com/gabapcia/safewatch/internal/safetx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const (
	testSafe    = "0x5aFE3855358E112B5647B952709E6165e1c1eEEe"
	testSafeURL = "https://app.safe.global/transactions/tx?"
)

func testEvent(eventType safetx.EventType) safetx.Event {
	return safetx.Event{
		Type:        eventType,
		ChainPrefix: "camp",
		Safe:        testSafe,
		Tx: safetx.TxDetail[safetx.Signer]{
			SafeTxHash: "0xabc",
			Nonce:      12,
			Proposer:   safetx.Signer{Address: "0x1111", Name: "alice"},
			Confirmations: []safetx.Signer{
				{Address: "0x1111", Name: "alice"},
				{Address: "0x2222"},
			},
			ConfirmationsRequired: 3,
			IsExecuted:            eventType == safetx.EventExecuted,
		},
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func newTestNotifier(webhookURL string) (*notifier, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return New(webhookURL, testSafeURL, WithLogger(logger.FromZap(zap.New(core)))), logs
}

func TestNotifier_Message(t *testing.T) {
	t.Run("renders the full message", func(t *testing.T) {
		n, _ := newTestNotifier("")

		msg, err := n.message(testEvent(safetx.EventExecuted))
		require.NoError(t, err)

		expected := strings.Join([]string{
			"executed Camp multisig [2/3] with safeTxHash `0xabc` and nonce `12`",
			"*Proposed by:* *alice*",
			"*Signed by:* *alice*, `0x2222`",
			"<" + testSafeURL + "safe=camp:" + testSafe + "/&id=multisig_" + testSafe + "_0xabc|🔗 transaction>",
		}, "\n\n")
		assert.Equal(t, expected, msg)
	})

	t.Run("contains the ratio, the hash and every signer", func(t *testing.T) {
		n, _ := newTestNotifier("")

		msg, err := n.message(testEvent(safetx.EventExecuted))
		require.NoError(t, err)

		assert.Contains(t, msg, "2/3")
		assert.Contains(t, msg, "0xabc")
		assert.Contains(t, msg, "*alice*")
		assert.Contains(t, msg, "`0x2222`")
	})

	t.Run("uses the alert phrase for malicious transactions", func(t *testing.T) {
		n, _ := newTestNotifier("")

		msg, err := n.message(testEvent(safetx.EventMalicious))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(msg, "ALERT! ACTION REQUIRED: MALICIOUS TRANSACTION DETECTED! Camp multisig"))
	})

	t.Run("has an action phrase for every event type", func(t *testing.T) {
		for _, et := range safetx.EventTypes {
			assert.Contains(t, actions, et)
		}
	})

	t.Run("fails on an unknown event type", func(t *testing.T) {
		n, _ := newTestNotifier("")

		_, err := n.message(testEvent("deleted"))
		assert.ErrorIs(t, err, ErrUnknownEventType)
	})

	t.Run("fails on an unknown chain prefix", func(t *testing.T) {
		n, _ := newTestNotifier("")
		event := testEvent(safetx.EventCreated)
		event.ChainPrefix = "nope"

		_, err := n.message(event)
		assert.ErrorIs(t, err, ErrUnknownNetwork)
	})
}

func TestNotifier_Send(t *testing.T) {
	t.Run("posts the rendered text as json", func(t *testing.T) {
		var received payload
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			w.Write([]byte("ok"))
		}))
		defer server.Close()

		n, logs := newTestNotifier(server.URL)

		err := n.Send(t.Context(), testEvent(safetx.EventCreated))
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(received.Text, "created Camp multisig [2/3]"))
		assert.Equal(t, 1, logs.FilterMessage("slack sent successfully").Len())
	})

	t.Run("skips delivery without a webhook url", func(t *testing.T) {
		var requests atomic.Int32
		httpClient := transporthttp.NewClient(transporthttp.WithRetryMax(0))
		httpClient.HTTPClient.Transport = roundTripFunc(func(r *http.Request) (*http.Response, error) {
			requests.Add(1)
			return nil, errors.New("no request expected")
		})

		core, logs := observer.New(zapcore.DebugLevel)
		n := New("", testSafeURL, WithHTTPClient(httpClient), WithLogger(logger.FromZap(zap.New(core))))

		err := n.Send(t.Context(), testEvent(safetx.EventCreated))
		require.NoError(t, err)

		assert.Zero(t, requests.Load(), "no network call should be made")

		warnings := logs.FilterLevelExact(zapcore.WarnLevel)
		require.Equal(t, 1, warnings.Len())
		assert.Equal(t, "slack webhook not configured", warnings.All()[0].Message)
	})

	t.Run("logs and swallows a server error without retrying", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("no_service"))
		}))
		defer server.Close()

		n, logs := newTestNotifier(server.URL)

		err := n.Send(t.Context(), testEvent(safetx.EventUpdated))
		require.NoError(t, err)

		assert.Equal(t, int32(1), calls.Load())

		failures := logs.FilterMessage("cannot send to slack")
		require.Equal(t, 1, failures.Len())
		fields := failures.All()[0].ContextMap()
		assert.Contains(t, fields["error"], "no_service")
		assert.Contains(t, fields["text"], "updated Camp multisig")
	})

	t.Run("logs and swallows a network error", func(t *testing.T) {
		server := httptest.NewServer(nil)
		server.Close()

		n, logs := newTestNotifier(server.URL)

		err := n.Send(t.Context(), testEvent(safetx.EventUpdated))
		require.NoError(t, err)
		assert.Equal(t, 1, logs.FilterMessage("cannot send to slack").Len())
	})

	t.Run("returns rendering errors without delivering", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		}))
		defer server.Close()

		n, _ := newTestNotifier(server.URL)
		event := testEvent(safetx.EventCreated)
		event.ChainPrefix = "nope"

		err := n.Send(t.Context(), event)
		assert.ErrorIs(t, err, ErrUnknownNetwork)
		assert.Equal(t, int32(0), calls.Load())
	})
}

func TestKnownNetwork(t *testing.T) {
	assert.True(t, KnownNetwork("camp"))
	assert.False(t, KnownNetwork("nope"))
}
