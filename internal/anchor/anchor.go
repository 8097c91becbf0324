// Package anchor fetches verifiable randomness-beacon rounds used to bound
// receipt creation time. The beacon is an enrichment, never a dependency:
// every failure path degrades to an unanchored receipt.
package anchor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/proofpost-systems/proofpost/internal/models"
)

// Defaults point at the drand mainnet chain.
const (
	DefaultBaseURL   = "https://api.drand.sh"
	DefaultChainHash = "8990e7a9aaed2ffed73dbd7092123d6f289930540d7651336225dc172e51b2ce"
	DefaultTimeout   = 3 * time.Second
)

// Fetcher is the temporal-anchor capability the receipt engine composes.
// Implementations must return nil instead of erroring: anchor availability
// must never block receipt issuance.
type Fetcher interface {
	FetchLatest(ctx context.Context) *models.AnchorRound
}

// Client fetches the latest round from a drand-compatible HTTP beacon.
type Client struct {
	baseURL   string
	chainHash string
	http      *http.Client
}

func NewClient(baseURL, chainHash string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if chainHash == "" {
		chainHash = DefaultChainHash
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:   baseURL,
		chainHash: chainHash,
		http:      &http.Client{Timeout: timeout},
	}
}

type beaconResponse struct {
	Round      uint64 `json:"round"`
	Randomness string `json:"randomness"`
	Signature  string `json:"signature"`
}

// FetchLatest returns the latest beacon round, or nil if the beacon is
// unreachable, returns a non-200, or returns a malformed payload. The reason
// is logged; the caller proceeds unanchored.
func (c *Client) FetchLatest(ctx context.Context) *models.AnchorRound {
	url := fmt.Sprintf("%s/%s/public/latest", c.baseURL, c.chainHash)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		slog.Warn("anchor fetch skipped", slog.String("error", err.Error()))
		return nil
	}

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Warn("anchor beacon unreachable", slog.String("error", err.Error()))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("anchor beacon returned non-OK status", slog.Int("status", resp.StatusCode))
		return nil
	}

	var round beaconResponse
	if err := json.NewDecoder(resp.Body).Decode(&round); err != nil {
		slog.Warn("anchor beacon payload malformed", slog.String("error", err.Error()))
		return nil
	}
	if round.Round == 0 || round.Randomness == "" || round.Signature == "" {
		slog.Warn("anchor beacon payload incomplete", slog.Uint64("round", round.Round))
		return nil
	}

	return &models.AnchorRound{
		Round:      round.Round,
		Randomness: round.Randomness,
		Signature:  round.Signature,
		ChainHash:  c.chainHash,
		FetchedAt:  time.Now().UTC(),
	}
}

// Disabled is a Fetcher that always reports no anchor. Used when anchoring
// is turned off in configuration.
type Disabled struct{}

func (Disabled) FetchLatest(context.Context) *models.AnchorRound { return nil }
