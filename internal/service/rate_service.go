package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"
)

// ErrRateFeedDisabled is returned when no feed URL is configured
var ErrRateFeedDisabled = errors.New("rate feed is not configured")

const baseRatePath = "//Rates/Rate[@Type='base']"

const defaultRateRetryAfter = 30 * time.Second

// RateSvc reads the base lending rate from an XML feed of the form
//
//	<Rates><Rate Type="base"><Value>6,50</Value></Rate></Rates>
//
// A fetched rate is reused for the configured cache TTL and a failed fetch is
// reported again without a request until RetryAfter has passed. At most one
// request is in flight; concurrent callers wait for its result.
type RateSvc struct {
	logger     *logrus.Logger
	feedURL    string
	client     *http.Client
	cacheTTL   time.Duration
	retryAfter time.Duration
	clock      func() time.Time

	mu        sync.Mutex
	rate      float64
	fetchedAt time.Time
	lastErr   error
	failedAt  time.Time
	inflight  chan struct{}
}

// NewRateService creates a new RateSvc
func NewRateService(deps Dependencies) *RateSvc {
	deps = deps.withRuntime()
	retryAfter := deps.Config.Rates.RetryAfter
	if retryAfter <= 0 {
		retryAfter = defaultRateRetryAfter
	}
	return &RateSvc{
		logger:     deps.Logger,
		feedURL:    deps.Config.Rates.FeedURL,
		client:     &http.Client{Timeout: deps.Config.Rates.Timeout},
		cacheTTL:   deps.Config.Rates.CacheTTL,
		retryAfter: retryAfter,
		clock:      deps.Clock,
	}
}

// BaseRate returns the annual base rate in percent
func (s *RateSvc) BaseRate(ctx context.Context) (float64, error) {
	if s.feedURL == "" {
		return 0, ErrRateFeedDisabled
	}

	for {
		s.mu.Lock()
		rate, done, err := s.cached()
		if done {
			s.mu.Unlock()
			return rate, err
		}
		if s.inflight == nil {
			break
		}
		wait := s.inflight
		s.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}

	// s.mu is held here and no fetch is running
	finished := make(chan struct{})
	s.inflight = finished
	s.mu.Unlock()

	rate, err := s.fetch(ctx)

	s.mu.Lock()
	s.inflight = nil
	close(finished)
	switch {
	case err == nil:
		s.rate, s.fetchedAt, s.lastErr = rate, s.clock(), nil
	case ctx.Err() == nil:
		// a caller giving up says nothing about the feed
		s.lastErr, s.failedAt = err, s.clock()
	}
	s.mu.Unlock()

	if err != nil {
		return 0, err
	}
	s.logger.Infof("Retrieved base rate from feed: %f%%", rate)
	return rate, nil
}

// cached reports a still fresh rate or a recent failure. Callers hold s.mu.
func (s *RateSvc) cached() (float64, bool, error) {
	now := s.clock()
	if !s.fetchedAt.IsZero() && now.Sub(s.fetchedAt) < s.cacheTTL {
		return s.rate, true, nil
	}
	if s.lastErr != nil && now.Sub(s.failedAt) < s.retryAfter {
		return 0, true, fmt.Errorf("rate feed failed %s ago: %w", now.Sub(s.failedAt).Round(time.Second), s.lastErr)
	}
	return 0, false, nil
}

func (s *RateSvc) fetch(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.feedURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/xml, text/xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("rate feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read response: %w", err)
	}

	return parseBaseRate(body)
}

func parseBaseRate(body []byte) (float64, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return 0, fmt.Errorf("failed to parse rate data: %w", err)
	}

	rateElem := doc.FindElement(baseRatePath)
	if rateElem == nil {
		return 0, errors.New("base rate element not found in response")
	}

	valueElem := rateElem.FindElement("Value")
	if valueElem == nil {
		return 0, errors.New("value element not found in base rate")
	}

	// the feed may use a decimal comma
	valueStr := strings.Replace(strings.TrimSpace(valueElem.Text()), ",", ".", 1)
	rate, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse base rate value: %w", err)
	}
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate < 0 {
		return 0, fmt.Errorf("base rate must be a non-negative number, got %v", rate)
	}

	return rate, nil
}
