package google

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"

	"github.com/goliatone/go-translate/internal/logging"
	"github.com/goliatone/go-translate/internal/provider"
	"github.com/goliatone/go-translate/pkg/interfaces"
)

// ProviderKey identifies this adapter in the registry.
const ProviderKey = "google"

const (
	defaultLocation = "global"
	endpointFormat  = "https://translation.googleapis.com/v3/projects/%s/locations/%s:translateText"
	requestTimeout  = 20 * time.Second
)

// Config carries Google Cloud Translation credentials. ServiceAccountJSON
// takes precedence over APIKey when both are present.
type Config struct {
	ProjectID          string
	Location           string
	APIKey             string
	ServiceAccountJSON string
	// EndpointOverride points the adapter at a non-production endpoint; tests
	// use it, production leaves it empty.
	EndpointOverride string
}

// Option mutates the provider configuration.
type Option func(*Provider)

// WithRateLimiter injects the shared admission limiter.
func WithRateLimiter(limiter provider.RateLimiter) Option {
	return func(p *Provider) {
		p.limiter = limiter
	}
}

// WithLogger overrides the provider logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithHTTPClient overrides the resty client.
func WithHTTPClient(client *resty.Client) Option {
	return func(p *Provider) {
		if client != nil {
			p.http = client
			p.tokens.http = client
		}
	}
}

// WithTokenEndpoint overrides the OAuth token exchange endpoint.
func WithTokenEndpoint(endpoint string) Option {
	return func(p *Provider) {
		if endpoint != "" {
			p.tokens.endpoint = endpoint
		}
	}
}

// Provider translates text through the Google Cloud Translation v3 API.
type Provider struct {
	cfg     Config
	http    *resty.Client
	limiter provider.RateLimiter
	logger  interfaces.Logger
	tokens  *tokenSource
}

var _ interfaces.TranslationProvider = (*Provider)(nil)

// New constructs a Google Cloud Translation provider.
func New(cfg Config, opts ...Option) *Provider {
	if cfg.Location == "" {
		cfg.Location = defaultLocation
	}
	client := resty.New().SetTimeout(requestTimeout)
	p := &Provider{
		cfg:    cfg,
		http:   client,
		logger: logging.NoOp(),
		tokens: newTokenSource(client),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Key returns the stable provider identifier.
func (p *Provider) Key() string { return ProviderKey }

type translateRequest struct {
	Contents           []string `json:"contents"`
	TargetLanguageCode string   `json:"targetLanguageCode"`
	SourceLanguageCode string   `json:"sourceLanguageCode,omitempty"`
	MimeType           string   `json:"mimeType,omitempty"`
}

type translateResponse struct {
	Translations []struct {
		TranslatedText string `json:"translatedText"`
	} `json:"translations"`
}

// TranslateBatch translates items preserving input order.
func (p *Provider) TranslateBatch(ctx context.Context, items []string, target, source string, opts interfaces.TranslateOptions) ([]string, error) {
	if len(items) == 0 || target == "" {
		return nil, provider.NewVendorError(ProviderKey, provider.ErrMissingData, 0, "", nil)
	}
	if p.cfg.APIKey == "" && p.cfg.ServiceAccountJSON == "" {
		return nil, provider.NewVendorError(ProviderKey, provider.ErrMissingData, 0, "", nil)
	}

	if p.limiter != nil && !p.limiter.Allow(countCharacters(items)) {
		return nil, provider.NewVendorError(ProviderKey, provider.ErrRateLimited, 0, "", nil)
	}

	body := translateRequest{
		Contents:           items,
		TargetLanguageCode: normalizeLanguage(target),
		MimeType:           "text/html",
	}
	if source != "" {
		body.SourceLanguageCode = normalizeLanguage(source)
	}
	if opts.TagHandling == "plain" {
		body.MimeType = "text/plain"
	}

	endpoint := p.endpoint()

	req := p.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body)

	if p.cfg.ServiceAccountJSON != "" {
		token, err := p.tokens.token(ctx, p.cfg.ServiceAccountJSON)
		if err != nil {
			p.logger.Error("google token acquisition failed", "error", err)
			return nil, err
		}
		req.SetHeader("Authorization", "Bearer "+token)
	} else {
		req.SetQueryParam("key", p.cfg.APIKey)
	}

	var parsed translateResponse
	resp, err := req.SetResult(&parsed).Post(endpoint)
	if err != nil {
		p.logger.Error("google http error", "error", err)
		return nil, provider.NewVendorError(ProviderKey, provider.ErrHTTP, 0, "", err)
	}
	if resp.IsError() {
		p.logger.Error("google api error", "status", resp.StatusCode(), "body", resp.String())
		return nil, provider.NewVendorError(ProviderKey, provider.ErrAPI, resp.StatusCode(), resp.String(), nil)
	}
	if len(parsed.Translations) != len(items) {
		p.logger.Error("google malformed response", "body", resp.String())
		return nil, provider.NewVendorError(ProviderKey, provider.ErrMalformedResponse, resp.StatusCode(), resp.String(), nil)
	}

	out := make([]string, len(parsed.Translations))
	for i, tr := range parsed.Translations {
		out[i] = tr.TranslatedText
	}
	return out, nil
}

// TranslateText translates a single string by delegating to TranslateBatch.
func (p *Provider) TranslateText(ctx context.Context, text, target, source string, opts interfaces.TranslateOptions) (string, error) {
	out, err := p.TranslateBatch(ctx, []string{text}, target, source, opts)
	if err != nil {
		return "", err
	}
	return out[0], nil
}

// Test verifies credentials and connectivity with a single short request.
func (p *Provider) Test(ctx context.Context) error {
	_, err := p.TranslateText(ctx, "ping", "de", "", interfaces.TranslateOptions{})
	return err
}

func (p *Provider) endpoint() string {
	if p.cfg.EndpointOverride != "" {
		return p.cfg.EndpointOverride
	}
	return fmt.Sprintf(endpointFormat,
		url.PathEscape(p.cfg.ProjectID),
		url.PathEscape(p.cfg.Location),
	)
}

func countCharacters(items []string) int {
	total := 0
	for _, item := range items {
		total += utf8.RuneCountInString(item)
	}
	return total
}

// normalizeLanguage lowercases the identifier and swaps underscores for
// hyphens, the shape v3 expects (pt_BR -> pt-br).
func normalizeLanguage(language string) string {
	return strings.ReplaceAll(strings.ToLower(language), "_", "-")
}
