// Package advisor implements the skill advisor API client.
// The advisor is an optional external service that recommends skill chains
// based on a user's learning interests. When it is unreachable, a local
// catalog heuristic serves as the fallback.
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/skillchain-hub/skillchain-backend/internal/domain/chain"
	"github.com/skillchain-hub/skillchain-backend/pkg/circuitbreaker"
	"github.com/skillchain-hub/skillchain-backend/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONTRACT
// ══════════════════════════════════════════════════════════════════════════════

// MaxSuggestions caps the number of chain suggestions returned to a user.
const MaxSuggestions = 2

// Suggestion is a single recommended skill chain.
type Suggestion struct {
	ChainID string `json:"chain_id"`
	Title   string `json:"title"`
	Reason  string `json:"reason,omitempty"`
}

// SuggestRequest describes what the user wants to learn.
type SuggestRequest struct {
	UserID    string   `json:"user_id"`
	Interests []string `json:"interests"`
	Limit     int      `json:"limit"`
}

// Advisor recommends skill chains for a set of learning interests.
type Advisor interface {
	Suggest(ctx context.Context, req SuggestRequest) ([]Suggestion, error)
}

// ErrAdvisorUnavailable is returned when the remote advisor cannot serve
// the request and no fallback is configured.
var ErrAdvisorUnavailable = errors.New("advisor: service unavailable")

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the advisor API client.
type ClientConfig struct {
	// BaseURL is the advisor API base URL.
	BaseURL string

	// APIKey is the bearer token for authentication.
	APIKey string

	// Timeout is the HTTP request timeout.
	Timeout time.Duration

	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// HTTP CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client is the advisor API client with retries and circuit breaking.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	logger     *slog.Logger
	retrier    *retry.Retrier
	breaker    *circuitbreaker.CircuitBreaker
}

// NewClient creates a new advisor API client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}

	logger := config.Logger

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger:  logger,
		retrier: retry.AdvisorRetrier(),
		breaker: circuitbreaker.AdvisorBreaker(func(name string, from, to circuitbreaker.State) {
			logger.Warn("advisor circuit state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		}),
	}
}

// suggestResponseDTO is the wire format of the advisor response.
type suggestResponseDTO struct {
	Suggestions []Suggestion `json:"suggestions"`
	Error       string       `json:"error,omitempty"`
}

// Suggest asks the remote advisor for chain recommendations.
func (c *Client) Suggest(ctx context.Context, req SuggestRequest) ([]Suggestion, error) {
	if req.Limit <= 0 || req.Limit > MaxSuggestions {
		req.Limit = MaxSuggestions
	}

	var suggestions []Suggestion

	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.retrier.Do(ctx, func(ctx context.Context) error {
			result, err := c.doSuggest(ctx, req)
			if err != nil {
				return err
			}
			suggestions = result
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if len(suggestions) > req.Limit {
		suggestions = suggestions[:req.Limit]
	}

	return suggestions, nil
}

// doSuggest performs a single HTTP request.
func (c *Client) doSuggest(ctx context.Context, req SuggestRequest) ([]Suggestion, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("marshal request: %w", err))
	}

	fullURL := strings.TrimRight(c.config.BaseURL, "/") + "/v1/suggestions"

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(body))
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("create request: %w", err))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to parsing
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("advisor status %d", resp.StatusCode)
	default:
		return nil, retry.Permanent(fmt.Errorf("advisor status %d: %s", resp.StatusCode, string(respBody)))
	}

	var dto suggestResponseDTO
	if err := json.Unmarshal(respBody, &dto); err != nil {
		return nil, retry.Permanent(fmt.Errorf("unmarshal response: %w", err))
	}
	if dto.Error != "" {
		return nil, retry.Permanent(fmt.Errorf("advisor error: %s", dto.Error))
	}

	return dto.Suggestions, nil
}

// IsHealthy checks if the advisor API is reachable.
func (c *Client) IsHealthy(ctx context.Context) bool {
	fullURL := strings.TrimRight(c.config.BaseURL, "/") + "/health"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// ══════════════════════════════════════════════════════════════════════════════
// LOCAL FALLBACK
// ══════════════════════════════════════════════════════════════════════════════

// LocalAdvisor suggests chains from the local catalog by case-insensitive
// title containment. It needs no network and never fails on lookups alone.
type LocalAdvisor struct {
	chains chain.Chains
}

// NewLocalAdvisor creates a catalog-backed advisor.
func NewLocalAdvisor(chains chain.Chains) *LocalAdvisor {
	return &LocalAdvisor{chains: chains}
}

// Suggest matches interests against chain titles.
func (a *LocalAdvisor) Suggest(ctx context.Context, req SuggestRequest) ([]Suggestion, error) {
	limit := req.Limit
	if limit <= 0 || limit > MaxSuggestions {
		limit = MaxSuggestions
	}

	all, err := a.chains.List(ctx)
	if err != nil {
		return nil, err
	}

	suggestions := make([]Suggestion, 0, limit)
	for _, c := range all {
		if len(suggestions) >= limit {
			break
		}
		if matchesAny(c.Title, req.Interests) {
			suggestions = append(suggestions, Suggestion{
				ChainID: c.ID,
				Title:   c.Title,
				Reason:  "title matches your interests",
			})
		}
	}

	return suggestions, nil
}

// matchesAny reports whether the title contains any interest, ignoring case.
func matchesAny(title string, interests []string) bool {
	lower := strings.ToLower(title)
	for _, interest := range interests {
		needle := strings.ToLower(strings.TrimSpace(interest))
		if needle == "" {
			continue
		}
		if strings.Contains(lower, needle) {
			return true
		}
	}
	return false
}

// ══════════════════════════════════════════════════════════════════════════════
// RESILIENT COMPOSITE
// ══════════════════════════════════════════════════════════════════════════════

// FallbackAdvisor tries the primary advisor and falls back on any error.
type FallbackAdvisor struct {
	primary  Advisor
	fallback Advisor
	logger   *slog.Logger
}

// NewFallbackAdvisor composes a primary advisor with a fallback.
func NewFallbackAdvisor(primary, fallback Advisor, logger *slog.Logger) *FallbackAdvisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackAdvisor{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Suggest delegates to the primary advisor, using the fallback on failure.
func (a *FallbackAdvisor) Suggest(ctx context.Context, req SuggestRequest) ([]Suggestion, error) {
	if a.primary != nil {
		suggestions, err := a.primary.Suggest(ctx, req)
		if err == nil {
			return suggestions, nil
		}
		a.logger.Warn("advisor request failed, using local fallback", "error", err)
	}

	if a.fallback == nil {
		return nil, ErrAdvisorUnavailable
	}

	return a.fallback.Suggest(ctx, req)
}

var (
	_ Advisor = (*Client)(nil)
	_ Advisor = (*LocalAdvisor)(nil)
	_ Advisor = (*FallbackAdvisor)(nil)
)
