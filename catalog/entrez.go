package catalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/c360/orthomerge/alignment"
	"github.com/c360/orthomerge/errors"
	"github.com/c360/orthomerge/pkg/fasta"
	"github.com/c360/orthomerge/pkg/retry"
)

// NCBI allows three requests per second without an API key and ten with one.
const (
	entrezRate        = 3
	entrezRateWithKey = 10
	maxEntrezBody     = 64 << 20
)

// Entrez fetches sequences from NCBI E-utilities efetch in FASTA format.
type Entrez struct {
	baseURL  string
	database string
	apiKey   string
	email    string
	tool     string

	client  *http.Client
	limiter *rate.Limiter
	retry   retry.Config
	logger  *slog.Logger
}

// EntrezOption configures an Entrez catalog.
type EntrezOption func(*Entrez)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) EntrezOption {
	return func(e *Entrez) { e.client = c }
}

// WithRetry replaces the retry policy for failed requests.
func WithRetry(cfg retry.Config) EntrezOption {
	return func(e *Entrez) { e.retry = cfg }
}

// WithRateLimit overrides the requests-per-second budget.
func WithRateLimit(perSecond float64) EntrezOption {
	return func(e *Entrez) { e.limiter = rate.NewLimiter(rate.Limit(perSecond), 1) }
}

// WithEntrezLogger sets the logger for request diagnostics.
func WithEntrezLogger(l *slog.Logger) EntrezOption {
	return func(e *Entrez) { e.logger = l }
}

// NewEntrez creates an Entrez catalog for database at baseURL.
func NewEntrez(baseURL, database, apiKey, email, tool string, timeout time.Duration, opts ...EntrezOption) *Entrez {
	perSecond := entrezRate
	if apiKey != "" {
		perSecond = entrezRateWithKey
	}
	e := &Entrez{
		baseURL:  strings.TrimRight(baseURL, "/"),
		database: database,
		apiKey:   apiKey,
		email:    email,
		tool:     tool,
		client:   &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(rate.Limit(perSecond), 1),
		retry:    retry.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Lookup implements Catalog.
func (e *Entrez) Lookup(ctx context.Context, id string) (string, error) {
	body, err := retry.DoWithResult(ctx, e.retry, func() ([]byte, error) {
		return e.fetch(ctx, id)
	})
	if err != nil {
		var nre *retry.NonRetryableError
		if errors.As(err, &nre) {
			return "", nre.Err
		}
		return "", err
	}

	records, err := fasta.NewReader(bytes.NewReader(body)).ReadAll()
	if err != nil {
		return "", errors.WrapInvalid(fmt.Errorf("%w: %w", errors.ErrParsingFailed, err), "Entrez", "Lookup", "parse efetch response for "+id)
	}
	if len(records) == 0 || records[0].Seq == "" {
		return "", notFound("Entrez", id)
	}
	return alignment.Ungapped(records[0].Seq), nil
}

func (e *Entrez) fetch(ctx context.Context, id string) ([]byte, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, retry.NonRetryable(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.efetchURL(id), nil)
	if err != nil {
		return nil, retry.NonRetryable(errors.WrapInvalid(err, "Entrez", "fetch", "build request"))
	}

	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, errors.WrapTransient(err, "Entrez", "fetch", "efetch "+id)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxEntrezBody))
	if err != nil {
		return nil, errors.WrapTransient(err, "Entrez", "fetch", "read body")
	}
	e.logger.Debug("efetch", "id", id, "status", resp.StatusCode, "bytes", len(body), "elapsed", time.Since(start))

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, errors.WrapTransient(errors.ErrRateLimited, "Entrez", "fetch", "efetch "+id)
	case resp.StatusCode >= 500:
		return nil, errors.WrapTransient(fmt.Errorf("%w: status %d", errors.ErrStorageUnavailable, resp.StatusCode), "Entrez", "fetch", "efetch "+id)
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound:
		return nil, retry.NonRetryable(notFound("Entrez", id))
	case resp.StatusCode != http.StatusOK:
		return nil, retry.NonRetryable(errors.WrapFatal(fmt.Errorf("unexpected status %d", resp.StatusCode), "Entrez", "fetch", "efetch "+id))
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, retry.NonRetryable(notFound("Entrez", id))
	}
	return body, nil
}

func (e *Entrez) efetchURL(id string) string {
	q := url.Values{}
	q.Set("db", e.database)
	q.Set("id", id)
	q.Set("rettype", "fasta")
	q.Set("retmode", "text")
	if e.apiKey != "" {
		q.Set("api_key", e.apiKey)
	}
	if e.email != "" {
		q.Set("email", e.email)
	}
	if e.tool != "" {
		q.Set("tool", e.tool)
	}
	return e.baseURL + "/efetch.fcgi?" + q.Encode()
}
