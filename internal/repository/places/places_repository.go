package places

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

	"myFoodFinder/domain"
	"myFoodFinder/pkg/logger"
	"myFoodFinder/pkg/metrics"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const (
	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
)

// ErrPlacesStatus wraps a non-OK status returned by the places API.
var ErrPlacesStatus = errors.New("places api error")

type PlacesConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration

	RateLimit float64
	Burst     int

	// consecutive failures before the breaker opens
	FailureThreshold uint32
	// how long the breaker stays open before probing again
	OpenTimeout time.Duration

	HTTPClient *http.Client
}

// PlacesRepository looks up nearby restaurants through the Nearby Search
// endpoint. Calls are rate limited and run behind a circuit breaker.
type PlacesRepository struct {
	cfg     PlacesConfig
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]domain.Candidate]
}

func NewPlacesRepository(cfg PlacesConfig) *PlacesRepository {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	threshold := cfg.FailureThreshold
	breaker := gobreaker.NewCircuitBreaker[[]domain.Candidate](gobreaker.Settings{
		Name:        "places",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			// caller cancellation says nothing about upstream health
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return &PlacesRepository{
		cfg:     cfg,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		breaker: breaker,
	}
}

// FetchCandidates runs one nearby search per place type and merges the
// results in order, dropping places already seen under an earlier type.
func (r *PlacesRepository) FetchCandidates(
	ctx context.Context,
	loc domain.Location,
	placeTypes []string,
	radiusMeters int,
) ([]domain.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	seen := make(map[string]struct{})
	out := make([]domain.Candidate, 0)

	for _, placeType := range placeTypes {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		found, err := r.breaker.Execute(func() ([]domain.Candidate, error) {
			return r.nearbySearch(ctx, loc, placeType, radiusMeters)
		})
		if err != nil {
			metrics.PlacesRequests.WithLabelValues(resultLabel(err)).Inc()
			return nil, fmt.Errorf("nearby search %q: %w", placeType, err)
		}
		metrics.PlacesRequests.WithLabelValues("ok").Inc()

		for _, c := range found {
			if _, dup := seen[c.ID]; dup {
				continue
			}
			seen[c.ID] = struct{}{}
			out = append(out, c)
		}
	}

	return out, nil
}

// State reports the breaker state for health checks.
func (r *PlacesRepository) State() string {
	return r.breaker.State().String()
}

func (r *PlacesRepository) nearbySearch(ctx context.Context, loc domain.Location, placeType string, radiusMeters int) ([]domain.Candidate, error) {
	q := url.Values{}
	q.Set("location", strconv.FormatFloat(loc.Lat, 'f', -1, 64)+","+strconv.FormatFloat(loc.Lng, 'f', -1, 64))
	q.Set("radius", strconv.Itoa(radiusMeters))
	q.Set("type", placeType)
	q.Set("key", r.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.BaseURL+"/nearbysearch/json?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected http status %d", res.StatusCode)
	}

	var payload nearbySearchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	switch payload.Status {
	case statusOK:
	case statusZeroResults:
		return nil, nil
	default:
		if payload.ErrorMessage != "" {
			return nil, fmt.Errorf("%w: %s: %s", ErrPlacesStatus, payload.Status, payload.ErrorMessage)
		}
		return nil, fmt.Errorf("%w: %s", ErrPlacesStatus, payload.Status)
	}

	out := make([]domain.Candidate, 0, len(payload.Results))
	for _, p := range payload.Results {
		if p.PlaceID == "" {
			continue
		}
		out = append(out, p.toCandidate())
	}
	return out, nil
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "breaker_open"
	case errors.Is(err, ErrPlacesStatus):
		return "api_error"
	default:
		return "error"
	}
}
