// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package httpsource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sony/gobreaker/v2"

	"github.com/LukasKalbertodt/grakawa/acquire"
	"github.com/LukasKalbertodt/grakawa/core"
	"github.com/LukasKalbertodt/grakawa/storage"
)

// maxBodySize bounds how much of a response body is read.
const maxBodySize = 8 << 20

// ErrResponseTooLarge is returned, wrapped as permanent, when a response body
// exceeds the size limit.
var ErrResponseTooLarge = errors.New("response body too large")

// Source implements acquire.Source using HTTP requests.
type Source struct {
	config  *acquire.Config
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  *slog.Logger
	maxBody int64
}

// Option configures a Source.
type Option func(*Source)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Source) {
		s.client = client
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		s.logger = logger.With("component", "http-source")
	}
}

// New creates a new HTTP source.
// The config is validated and normalized before use.
//
// Returns acquire.Source interface (not *Source) to keep callers independent
// of the transport.
func New(config *acquire.Config, opts ...Option) (acquire.Source, error) {
	s, err := newSource(config, opts...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// newSource creates a new HTTP source.
// Internal constructor that returns concrete type for use in tests.
func newSource(config *acquire.Config, opts ...Option) (*Source, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	s := &Source{
		config: config,
		client:  &http.Client{},
		logger:  slog.Default().With("component", "http-source"),
		maxBody: maxBodySize,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "price-service",
		MaxRequests: 1,
		Timeout:     config.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(config.BreakerThreshold)
		},
		// Permanent failures say nothing about the health of the service.
		IsSuccessful: func(err error) bool {
			return err == nil || !acquire.IsRetryable(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			s.logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return s, nil
}

// PriceHistory fetches the price history of one product.
func (s *Source) PriceHistory(ctx context.Context, id core.ProductID) (core.Prices, error) {
	if err := core.ValidateProductID(id); err != nil {
		return nil, fmt.Errorf("%w: %w", acquire.ErrPermanent, err)
	}

	body, err := s.get(ctx, "/products/"+id.String()+"/prices", nil)
	if err != nil {
		var statusErr *acquire.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s: %w", acquire.ErrProductNotFound, id, err)
		}
		return nil, err
	}

	prices, err := storage.DecodePrices(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: price history of %s: %w", acquire.ErrPermanent, id, err)
	}
	if err := core.ValidatePrices(prices); err != nil {
		return nil, fmt.Errorf("%w: price history of %s: %w", acquire.ErrPermanent, id, err)
	}
	s.logger.Debug("fetched price history", "product", id, "entries", len(prices))
	return prices, nil
}

type searchResponse struct {
	ProductIDs []core.ProductID `json:"product_ids"`
}

// Search fetches one page of search results.
func (s *Source) Search(ctx context.Context, query string, page int) ([]core.ProductID, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: page must be at least 1, got %d", acquire.ErrPermanent, page)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("page", strconv.Itoa(page))
	body, err := s.get(ctx, "/search", params)
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: search results: %w", acquire.ErrPermanent, err)
	}
	for _, id := range resp.ProductIDs {
		if err := core.ValidateProductID(id); err != nil {
			return nil, fmt.Errorf("%w: search results: %w", acquire.ErrPermanent, err)
		}
	}
	s.logger.Debug("fetched search page", "query", query, "page", page, "results", len(resp.ProductIDs))
	return resp.ProductIDs, nil
}

// Close releases idle connections.
func (s *Source) Close() error {
	s.logger.Debug("closing HTTP source")
	s.client.CloseIdleConnections()
	return nil
}

// get performs a GET request through the circuit breaker, retrying temporary
// failures.
func (s *Source) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	target := s.config.BaseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var body []byte
	err := acquire.RetryWithBackoff(ctx, func() error {
		b, err := s.breaker.Execute(func() ([]byte, error) {
			return s.do(ctx, target)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %w", acquire.ErrTemporary, err)
		}
		body = b
		return err
	}, s.config.MaxRetries, s.config.RetryDelay)
	return body, err
}

func (s *Source) do(ctx context.Context, target string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", acquire.ErrPermanent, err)
	}
	req.Header.Set("Accept", "application/json")
	if s.config.UserAgent != "" {
		req.Header.Set("User-Agent", s.config.UserAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", acquire.ErrTemporary, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, s.maxBody))
		return nil, &acquire.StatusError{StatusCode: resp.StatusCode, URL: target}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response from %s: %w", acquire.ErrTemporary, target, err)
	}
	if int64(len(body)) > s.maxBody {
		return nil, fmt.Errorf("%w: %w: %s exceeds %d bytes", acquire.ErrPermanent, ErrResponseTooLarge, target, s.maxBody)
	}
	return body, nil
}
