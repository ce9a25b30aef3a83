package deepl

import (
	"context"
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
const ProviderKey = "deepl"

const defaultAPIURL = "https://api-free.deepl.com/v2/translate"

const requestTimeout = 20 * time.Second

// Config carries DeepL credentials and the endpoint override used for the
// paid tier.
type Config struct {
	APIKey string
	APIURL string
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

// WithHTTPClient overrides the resty client, used by tests to point at a
// local server.
func WithHTTPClient(client *resty.Client) Option {
	return func(p *Provider) {
		if client != nil {
			p.http = client
		}
	}
}

// Provider translates text through the DeepL v2 API. It is stateless across
// calls; the limiter and logger are shared collaborators.
type Provider struct {
	cfg     Config
	http    *resty.Client
	limiter provider.RateLimiter
	logger  interfaces.Logger
}

var _ interfaces.TranslationProvider = (*Provider)(nil)

// New constructs a DeepL provider.
func New(cfg Config, opts ...Option) *Provider {
	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL
	}
	p := &Provider{
		cfg:    cfg,
		http:   resty.New().SetTimeout(requestTimeout),
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Key returns the stable provider identifier.
func (p *Provider) Key() string { return ProviderKey }

type translateResponse struct {
	Translations []struct {
		Text string `json:"text"`
	} `json:"translations"`
}

// TranslateBatch translates items preserving input order.
func (p *Provider) TranslateBatch(ctx context.Context, items []string, target, source string, opts interfaces.TranslateOptions) ([]string, error) {
	if len(items) == 0 || target == "" {
		return nil, provider.NewVendorError(ProviderKey, provider.ErrMissingData, 0, "", nil)
	}
	if p.cfg.APIKey == "" {
		return nil, provider.NewVendorError(ProviderKey, provider.ErrMissingData, 0, "", nil)
	}

	if p.limiter != nil && !p.limiter.Allow(countCharacters(items)) {
		return nil, provider.NewVendorError(ProviderKey, provider.ErrRateLimited, 0, "", nil)
	}

	form := url.Values{}
	form.Set("auth_key", p.cfg.APIKey)
	for _, item := range items {
		form.Add("text", item)
	}
	form.Set("target_lang", mapLanguage(target))
	if source != "" {
		form.Set("source_lang", mapLanguage(source))
	}
	applyOptions(form, opts)

	var parsed translateResponse
	resp, err := p.http.R().
		SetContext(ctx).
		SetFormDataFromValues(form).
		SetResult(&parsed).
		Post(p.cfg.APIURL)
	if err != nil {
		p.logger.Error("deepl http error", "error", err)
		return nil, provider.NewVendorError(ProviderKey, provider.ErrHTTP, 0, "", err)
	}
	if resp.IsError() {
		p.logger.Error("deepl api error", "status", resp.StatusCode(), "body", resp.String())
		return nil, provider.NewVendorError(ProviderKey, provider.ErrAPI, resp.StatusCode(), resp.String(), nil)
	}
	if len(parsed.Translations) != len(items) {
		p.logger.Error("deepl malformed response", "body", resp.String())
		return nil, provider.NewVendorError(ProviderKey, provider.ErrMalformedResponse, resp.StatusCode(), resp.String(), nil)
	}

	out := make([]string, len(parsed.Translations))
	for i, tr := range parsed.Translations {
		out[i] = tr.Text
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

func applyOptions(form url.Values, opts interfaces.TranslateOptions) {
	if opts.TagHandling != "" {
		form.Set("tag_handling", opts.TagHandling)
	}
	if opts.PreserveFormatting {
		form.Set("preserve_formatting", "1")
	}
	if opts.Formality != "" {
		form.Set("formality", opts.Formality)
	}
	if opts.GlossaryID != "" {
		form.Set("glossary_id", opts.GlossaryID)
	}
	for key, value := range opts.Extra {
		form.Set(key, value)
	}
}

func countCharacters(items []string) int {
	total := 0
	for _, item := range items {
		total += utf8.RuneCountInString(item)
	}
	return total
}

// languageMap translates generic locale identifiers into DeepL target codes.
var languageMap = map[string]string{
	"en":    "EN-GB",
	"en_US": "EN-US",
	"en_GB": "EN-GB",
	"de":    "DE",
	"fr":    "FR",
	"es":    "ES",
	"it":    "IT",
	"pt":    "PT-PT",
	"pt_BR": "PT-BR",
	"nl":    "NL",
	"pl":    "PL",
	"ru":    "RU",
	"uk":    "UK",
	"ja":    "JA",
	"zh":    "ZH",
	"bg":    "BG",
	"cs":    "CS",
	"da":    "DA",
	"el":    "EL",
	"et":    "ET",
	"fi":    "FI",
	"hu":    "HU",
	"id":    "ID",
	"lv":    "LV",
	"lt":    "LT",
	"ro":    "RO",
	"sk":    "SK",
	"sl":    "SL",
	"sv":    "SV",
	"tr":    "TR",
}

// mapLanguage resolves a locale through the table, falling back to the
// uppercased identifier for codes DeepL may accept directly.
func mapLanguage(language string) string {
	if mapped, ok := languageMap[language]; ok {
		return mapped
	}
	return strings.ToUpper(language)
}
