// Package slack implements safetx.Notifier for Slack incoming webhooks.
//
// Events are rendered into a multi-paragraph mrkdwn message and POSTed as
// {"text": ...}. Delivery is best effort: failures are logged together with
// the message text and never retried or returned.
package slack

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gabapcia/safewatch/internal/pkg/logger"
	transporthttp "github.com/gabapcia/safewatch/internal/pkg/transport/http"
	"github.com/gabapcia/safewatch/internal/safetx"

	"github.com/hashicorp/go-retryablehttp"
)

var (
	// ErrUnknownEventType is returned when an event type has no action phrase.
	ErrUnknownEventType = errors.New("unknown event type")

	// ErrUnknownNetwork is returned when a chain prefix has no display name.
	ErrUnknownNetwork = errors.New("unknown network")
)

// actions maps every event type to the phrase that opens the message.
var actions = map[safetx.EventType]string{
	safetx.EventCreated:   "created",
	safetx.EventUpdated:   "updated",
	safetx.EventExecuted:  "executed",
	safetx.EventMalicious: "ALERT! ACTION REQUIRED: MALICIOUS TRANSACTION DETECTED!",
}

// networks maps chain prefixes to display names.
var networks = map[string]string{
	"camp":  "Camp",
	"eth":   "Ethereum",
	"sep":   "Sepolia",
	"oeth":  "Optimism",
	"arb1":  "Arbitrum",
	"base":  "Base",
	"matic": "Polygon",
	"gno":   "Gnosis",
	"bnb":   "BNB Chain",
}

// KnownNetwork reports whether prefix has a display name.
func KnownNetwork(prefix string) bool {
	_, ok := networks[prefix]
	return ok
}

// payload is the webhook request body.
type payload struct {
	Text string `json:"text"`
}

// notifier delivers events to one Slack webhook.
type notifier struct {
	webhookURL string
	safeURL    string // Safe web UI base, e.g. "https://app.safe.global/transactions/tx?"
	httpClient *retryablehttp.Client
	log        *logger.Logger
}

// Compile-time assertion that notifier implements safetx.Notifier.
var _ safetx.Notifier = (*notifier)(nil)

// config holds optional settings for the notifier.
type config struct {
	httpClient *retryablehttp.Client
	log        *logger.Logger
}

// Option customizes the notifier.
type Option func(*config)

// WithHTTPClient overrides the HTTP client. It should not retry: webhook
// deliveries are attempted once.
func WithHTTPClient(c *retryablehttp.Client) Option {
	return func(cfg *config) {
		cfg.httpClient = c
	}
}

// WithLogger sets the logger used to report delivery outcomes.
func WithLogger(l *logger.Logger) Option {
	return func(cfg *config) {
		cfg.log = l
	}
}

// New creates a Slack notifier. An empty webhookURL is valid and turns
// delivery off.
func New(webhookURL, safeURL string, opts ...Option) *notifier {
	cfg := config{
		httpClient: transporthttp.NewClient(transporthttp.WithRetryMax(0)),
		log:        logger.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &notifier{
		webhookURL: webhookURL,
		safeURL:    safeURL,
		httpClient: cfg.httpClient,
		log:        cfg.log.With("notifier", "slack"),
	}
}

// Send renders event and delivers it. Only rendering errors are returned.
func (n *notifier) Send(ctx context.Context, event safetx.Event) error {
	msg, err := n.message(event)
	if err != nil {
		return err
	}

	n.deliver(ctx, msg)
	return nil
}

// message renders the summary, proposer, confirmations and link paragraphs.
func (n *notifier) message(event safetx.Event) (string, error) {
	action, ok := actions[event.Type]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownEventType, event.Type)
	}

	network, ok := networks[event.ChainPrefix]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownNetwork, event.ChainPrefix)
	}

	tx := event.Tx

	signers := make([]string, len(tx.Confirmations))
	for i, s := range tx.Confirmations {
		signers[i] = formatSigner(s)
	}

	summary := fmt.Sprintf("%s %s multisig [%d/%d] with safeTxHash `%s` and nonce `%d`",
		action, network, tx.Signed(), tx.ConfirmationsRequired, tx.SafeTxHash, tx.Nonce)
	link := fmt.Sprintf("<%ssafe=%s:%s/&id=%s|🔗 transaction>",
		n.safeURL, event.ChainPrefix, event.Safe, safetx.FormatTxID(event.Safe, tx.SafeTxHash))

	return strings.Join([]string{
		summary,
		"*Proposed by:* " + formatSigner(tx.Proposer),
		"*Signed by:* " + strings.Join(signers, ", "),
		link,
	}, "\n\n"), nil
}

// deliver POSTs text to the webhook, logging instead of returning failures.
func (n *notifier) deliver(ctx context.Context, text string) {
	if n.webhookURL == "" {
		n.log.Warn(ctx, "slack webhook not configured")
		return
	}

	if err := transporthttp.PostJSON(ctx, n.httpClient, n.webhookURL, payload{Text: text}); err != nil {
		n.log.Error(ctx, "cannot send to slack", "error", err, "text", text)
		return
	}

	n.log.Debug(ctx, "slack sent successfully")
}

// formatSigner renders a signer as its bold name, or its address as code.
func formatSigner(s safetx.Signer) string {
	if s.Name != "" {
		return "*" + s.Name + "*"
	}
	return "`" + s.Address + "`"
}
