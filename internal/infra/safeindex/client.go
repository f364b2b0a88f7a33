// Package safeindex implements safetx.Index on top of the v2 Safe
// transaction-index API exposed under /api/v2/safes. It pages through the
// multisig transaction list and normalizes both the list-summary and the
// full-detail response shapes into the canonical safetx model.
package safeindex

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/gabapcia/safewatch/internal/pkg/logger"
	transporthttp "github.com/gabapcia/safewatch/internal/pkg/transport/http"
	"github.com/gabapcia/safewatch/internal/safetx"

	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

// instrumentationName identifies this package in traces and metrics.
const instrumentationName = "github.com/gabapcia/safewatch/internal/infra/safeindex"

// client talks to one transaction-index deployment on behalf of one Safe.
type client struct {
	httpClient *retryablehttp.Client
	apiURL     string // base URL without trailing slash
	safe       string // Safe address whose transactions are listed

	log      *logger.Logger
	tracer   trace.Tracer
	requests metric.Int64Counter
}

// Compile-time assertion that client implements safetx.Index.
var _ safetx.Index = (*client)(nil)

// config holds optional settings for the client.
type config struct {
	log *logger.Logger
}

// Option customizes the client.
type Option func(*config)

// WithLogger sets the logger used to report failures. Defaults to the
// process logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *config) {
		c.log = l
	}
}

// NewClient creates a transaction-index client for safe served at apiURL.
func NewClient(httpClient *retryablehttp.Client, apiURL, safe string, opts ...Option) *client {
	cfg := config{log: logger.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	meter := otel.Meter(instrumentationName)
	requests, err := meter.Int64Counter("safeindex.requests",
		metric.WithDescription("Requests issued to the transaction index, by endpoint and outcome."),
	)
	if err != nil {
		requests = noop.Int64Counter{}
	}

	return &client{
		httpClient: httpClient,
		apiURL:     strings.TrimRight(apiURL, "/"),
		safe:       safe,
		log:        cfg.log.With("safe", safe),
		tracer:     otel.Tracer(instrumentationName),
		requests:   requests,
	}
}

// listURL is the first page of the Safe's multisig transaction list.
func (c *client) listURL() string {
	return fmt.Sprintf("%s/api/v2/safes/%s/multisig-transactions", c.apiURL, c.safe)
}

// detailURL is the single-transaction endpoint for safeTxHash.
func (c *client) detailURL(safeTxHash string) string {
	return fmt.Sprintf("%s/api/v2/safes/multisig-transactions/%s", c.apiURL, url.PathEscape(safeTxHash))
}

func (c *client) record(ctx context.Context, endpoint string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}

	c.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("outcome", outcome),
	))
}

// fetchList loads one list page. Any failure is logged and degrades to an
// empty page without continuation, which ends pagination.
func (c *client) fetchList(ctx context.Context, pageURL string) listResponse {
	var page listResponse
	err := transporthttp.GetJSON(ctx, c.httpClient, pageURL, &page)
	c.record(ctx, "list", err)
	if err != nil {
		c.log.Error(ctx, "failed to fetch transaction list page", "url", pageURL, "error", err)
		return emptyPage()
	}

	return page
}

// summarize normalizes the transactions of a page, skipping entries whose
// composite id cannot be parsed.
func (c *client) summarize(ctx context.Context, results []listResult) []safetx.TxSummary {
	summaries := make([]safetx.TxSummary, 0, len(results))
	for _, r := range results {
		summary, err := r.Transaction.toSummary()
		if err != nil {
			c.log.Warn(ctx, "skipping list entry", "entry.type", r.Type, "error", err)
			continue
		}

		summaries = append(summaries, summary)
	}

	return summaries
}

// FetchAll follows the list pagination until the remote reports no further
// page, a page request fails or a page links back to one already visited,
// returning everything collected so far.
func (c *client) FetchAll(ctx context.Context) []safetx.TxSummary {
	ctx, span := c.tracer.Start(ctx, "safeindex.FetchAll")
	defer span.End()

	var (
		summaries []safetx.TxSummary
		pages     int
		visited   = make(map[string]struct{})
	)
	for pageURL := c.listURL(); pageURL != ""; pages++ {
		if _, ok := visited[pageURL]; ok {
			c.log.Warn(ctx, "transaction list links back to a visited page", "url", pageURL)
			break
		}
		visited[pageURL] = struct{}{}

		page := c.fetchList(ctx, pageURL)
		summaries = append(summaries, c.summarize(ctx, page.Results)...)
		pageURL = page.nextURL()
	}

	span.SetAttributes(
		attribute.Int("safeindex.pages", pages),
		attribute.Int("safeindex.transactions", len(summaries)),
	)
	return summaries
}

// FetchLatest loads only the first list page.
func (c *client) FetchLatest(ctx context.Context) []safetx.TxSummary {
	ctx, span := c.tracer.Start(ctx, "safeindex.FetchLatest")
	defer span.End()

	page := c.fetchList(ctx, c.listURL())
	return c.summarize(ctx, page.Results)
}

// FetchDetailed loads and normalizes one transaction. Unlike the list calls,
// failures are returned because callers have no degraded value to use.
func (c *client) FetchDetailed(ctx context.Context, safeTxHash string) (safetx.TxDetail[string], error) {
	ctx, span := c.tracer.Start(ctx, "safeindex.FetchDetailed",
		trace.WithAttributes(attribute.String("safe.tx_hash", safeTxHash)),
	)
	defer span.End()

	c.log.Debug(ctx, "loading transaction", "tx.hash", safeTxHash)

	var tx transaction
	err := transporthttp.GetJSON(ctx, c.httpClient, c.detailURL(safeTxHash), &tx)
	c.record(ctx, "detail", err)
	if err != nil {
		return safetx.TxDetail[string]{}, c.failDetailed(ctx, span, safeTxHash, err)
	}

	detail, err := tx.toDetail()
	if err != nil {
		return safetx.TxDetail[string]{}, c.failDetailed(ctx, span, safeTxHash, err)
	}

	c.log.Debug(ctx, "loaded transaction", "tx.hash", safeTxHash)
	return detail, nil
}

func (c *client) failDetailed(ctx context.Context, span trace.Span, safeTxHash string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	c.log.Error(ctx, "failed to fetch transaction", "tx.hash", safeTxHash, "error", err)
	return fmt.Errorf("fetch transaction %s: %w", safeTxHash, err)
}
