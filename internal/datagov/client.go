// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package datagov

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/mgnrega-dashboard/internal/config"
	"github.com/tomtom215/mgnrega-dashboard/internal/logging"
	"github.com/tomtom215/mgnrega-dashboard/internal/metrics"
)

// ErrNotConfigured is returned when the API key, base URL or resource ID is
// missing. It is distinct from a year with zero records.
var ErrNotConfigured = errors.New("data.gov.in client not configured")

// maxErrorBodySize bounds how much of an error response is kept.
const maxErrorBodySize = 64 * 1024

// StatusError is a non-2xx response, or a 2xx response whose payload
// reports an error.
type StatusError struct {
	StatusCode int
	Message    string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("data.gov.in returned HTTP %d: %s", e.StatusCode, e.Message)
}

// Temporary reports whether retrying the same request may succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client fetches records from one data.gov.in resource.
type Client struct {
	cfg        config.DataGovConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient builds a client. A zero RequestsPerSecond disables pacing.
func NewClient(cfg *config.DataGovConfig) *Client {
	c := &Client{
		cfg:        *cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return c
}

// Configured reports whether the client can call the API.
func (c *Client) Configured() bool {
	return c.cfg.Configured()
}

type pageResponse struct {
	Total   flexInt     `json:"total"`
	Count   flexInt     `json:"count"`
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Records []RawRecord `json:"records"`
}

// flexInt accepts both 42 and "42"; anything else decodes as 0.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	n, err := strconv.Atoi(s)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexInt(n)
	return nil
}

// FetchAllRecordsForFinancialYear reads every page for finYear
// ("2024-2025"). Months are not filtered server-side; one sweep returns the
// whole year.
//
// Paging stops when the reported total is reached, when a page comes back
// empty (the total is sometimes missing or wrong), or after MaxPages.
func (c *Client) FetchAllRecordsForFinancialYear(ctx context.Context, finYear string) ([]Record, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	log := logging.Ctx(ctx).With().Str("fin_year", finYear).Logger()
	var out []Record
	offset := 0

	for pageNum := 0; pageNum < c.cfg.MaxPages; pageNum++ {
		page, err := c.fetchPage(ctx, finYear, offset)
		if err != nil {
			return nil, fmt.Errorf("fetch %s offset %d: %w", finYear, offset, err)
		}
		if len(page.Records) == 0 {
			break
		}
		for _, raw := range page.Records {
			out = append(out, ParseRecord(raw))
		}
		offset += len(page.Records)

		log.Debug().Int("offset", offset).Int("total", int(page.Total)).Msg("Fetched page")

		if page.Total > 0 && offset >= int(page.Total) {
			break
		}
	}

	log.Info().Int("records", len(out)).Msg("Fetched financial year")
	return out, nil
}

// fetchPage performs one page request with retries.
func (c *Client) fetchPage(ctx context.Context, finYear string, offset int) (*pageResponse, error) {
	reqURL := c.pageURL(finYear, offset)
	var page *pageResponse
	err := c.retryWithBackoff(ctx, func() error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		p, err := c.doPageRequest(ctx, reqURL)
		if err != nil {
			return err
		}
		page = p
		return nil
	})
	return page, err
}

func (c *Client) pageURL(finYear string, offset int) string {
	q := url.Values{}
	q.Set("api-key", c.cfg.APIKey)
	q.Set("format", "json")
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(c.cfg.PageSize))
	q.Set("filters["+c.cfg.StateField+"]", c.cfg.State)
	q.Set("filters["+c.cfg.FinYearField+"]", finYear)
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/" + url.PathEscape(c.cfg.ResourceID) + "?" + q.Encode()
}

func (c *Client) doPageRequest(ctx context.Context, reqURL string) (*pageResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordSourceRequest(0, time.Since(start))
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()
	metrics.RecordSourceRequest(resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Message:    readBodyForError(resp.Body),
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var page pageResponse
	if err := dec.Decode(&page); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if strings.EqualFold(page.Status, "error") {
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: page.Message}
	}
	return &page, nil
}

func readBodyForError(body io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(body, maxErrorBodySize))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

// parseRetryAfter handles the delay-seconds form of Retry-After.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
