package health

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProber verifies an API key by listing a single model.
type AnthropicProber struct {
	// BaseURL overrides the API endpoint when set
	BaseURL string
}

// NewAnthropicProber creates a prober against the default endpoint, or
// baseURL when non-empty.
func NewAnthropicProber(baseURL string) *AnthropicProber {
	return &AnthropicProber{BaseURL: baseURL}
}

// Ping implements IdentityProber. Retries are disabled so the probe makes
// exactly one round-trip.
func (p *AnthropicProber) Ping(ctx context.Context, apiKey string) error {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if p.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(p.BaseURL))
	}

	client := anthropic.NewClient(opts...)
	if _, err := client.Models.List(ctx, anthropic.ModelListParams{Limit: anthropic.Int(1)}); err != nil {
		return fmt.Errorf("anthropic list models: %w", err)
	}
	return nil
}
