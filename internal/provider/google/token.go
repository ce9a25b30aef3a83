package google

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"encoding/pem"
	"net/url"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/goliatone/go-translate/internal/provider"
)

const (
	defaultTokenEndpoint = "https://oauth2.googleapis.com/token"
	translationScope     = "https://www.googleapis.com/auth/cloud-translation"
	jwtGrantType         = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	tokenLifetime        = time.Hour
	// expirySlack refreshes tokens slightly early so a token never expires
	// mid-request.
	expirySlack = time.Minute
)

type serviceAccount struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
}

type cachedToken struct {
	value     string
	expiresAt time.Time
}

// tokenSource exchanges a service-account JWT for short-lived bearer tokens.
// Responses are cached per credential fingerprint, independent of the
// translation cache.
type tokenSource struct {
	mu       sync.Mutex
	http     *resty.Client
	endpoint string
	cached   map[string]cachedToken
	now      func() time.Time
}

func newTokenSource(client *resty.Client) *tokenSource {
	return &tokenSource{
		http:     client,
		endpoint: defaultTokenEndpoint,
		cached:   make(map[string]cachedToken),
		now:      time.Now,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (ts *tokenSource) token(ctx context.Context, serviceAccountJSON string) (string, error) {
	fingerprint := credentialFingerprint(serviceAccountJSON)

	ts.mu.Lock()
	if cached, ok := ts.cached[fingerprint]; ok && ts.now().Before(cached.expiresAt) {
		ts.mu.Unlock()
		return cached.value, nil
	}
	ts.mu.Unlock()

	assertion, err := ts.signAssertion(serviceAccountJSON)
	if err != nil {
		return "", err
	}

	var parsed tokenResponse
	resp, err := ts.http.R().
		SetContext(ctx).
		SetFormDataFromValues(url.Values{
			"grant_type": {jwtGrantType},
			"assertion":  {assertion},
		}).
		SetResult(&parsed).
		Post(ts.endpoint)
	if err != nil {
		return "", provider.NewVendorError(ProviderKey, provider.ErrHTTP, 0, "", err)
	}
	if resp.IsError() || parsed.AccessToken == "" {
		return "", provider.NewVendorError(ProviderKey, provider.ErrCredential, resp.StatusCode(), resp.String(), nil)
	}

	expiry := ts.now().Add(time.Duration(parsed.ExpiresIn) * time.Second)
	ts.mu.Lock()
	ts.cached[fingerprint] = cachedToken{
		value:     parsed.AccessToken,
		expiresAt: expiry.Add(-expirySlack),
	}
	ts.mu.Unlock()

	return parsed.AccessToken, nil
}

func (ts *tokenSource) signAssertion(serviceAccountJSON string) (string, error) {
	var account serviceAccount
	if err := json.Unmarshal([]byte(serviceAccountJSON), &account); err != nil {
		return "", provider.NewVendorError(ProviderKey, provider.ErrCredential, 0, "", err)
	}
	if account.ClientEmail == "" || account.PrivateKey == "" {
		return "", provider.NewVendorError(ProviderKey, provider.ErrCredential, 0, "", nil)
	}

	key, err := parsePrivateKey([]byte(account.PrivateKey))
	if err != nil {
		return "", provider.NewVendorError(ProviderKey, provider.ErrCredential, 0, "", err)
	}

	now := ts.now()
	header := base64JSON(map[string]string{"alg": "RS256", "typ": "JWT"})
	claim := base64JSON(map[string]any{
		"iss":   account.ClientEmail,
		"scope": translationScope,
		"aud":   defaultTokenEndpoint,
		"iat":   now.Unix(),
		"exp":   now.Add(tokenLifetime).Unix(),
	})

	signingInput := header + "." + claim
	digest := sha256.Sum256([]byte(signingInput))
	signature, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	if err != nil {
		return "", provider.NewVendorError(ProviderKey, provider.ErrCredential, 0, "", err)
	}

	return signingInput + "." + base64.RawURLEncoding.EncodeToString(signature), nil
}

func parsePrivateKey(pemBytes []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, provider.ErrCredential
	}
	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		if rsaKey, ok := key.(*rsa.PrivateKey); ok {
			return rsaKey, nil
		}
		return nil, provider.ErrCredential
	}
	return x509.ParsePKCS1PrivateKey(block.Bytes)
}

func base64JSON(value any) string {
	encoded, _ := json.Marshal(value)
	return base64.RawURLEncoding.EncodeToString(encoded)
}

func credentialFingerprint(serviceAccountJSON string) string {
	sum := sha256.Sum256([]byte(serviceAccountJSON))
	return hex.EncodeToString(sum[:])
}
