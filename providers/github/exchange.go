package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/SonarSource/sonar-auth-github/internal/util"
)

// maxTokenResponseSize bounds the token endpoint response body.
const maxTokenResponseSize = 64 << 10

// OAuthApp holds the registered OAuth application and the endpoint it lives on.
type OAuthApp struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Endpoint     Endpoint
}

// Config returns the golang.org/x/oauth2 configuration requesting scope.
// GitHub expects scopes comma separated, so scope is passed as one value.
func (a OAuthApp) Config(scope string) *oauth2.Config {
	cfg := &oauth2.Config{
		ClientID:     a.ClientID,
		ClientSecret: a.ClientSecret,
		RedirectURL:  a.RedirectURL,
		Endpoint:     a.Endpoint.OAuth2(),
	}
	if scope != "" {
		cfg.Scopes = []string{scope}
	}
	return cfg
}

// AuthCodeURL returns the authorize URL carrying client_id, redirect_uri,
// scope and state.
func (a OAuthApp) AuthCodeURL(state, scope string) string {
	return a.Config(scope).AuthCodeURL(state)
}

// Exchange trades an authorization code for an access token using the
// endpoint's exchange variant.
func (a OAuthApp) Exchange(ctx context.Context, httpClient *http.Client, code string) (*oauth2.Token, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if a.Endpoint.TokenExchange() == TokenExchangeStandard {
		return a.exchangeStandard(ctx, httpClient, code)
	}
	return a.exchangeLegacy(ctx, httpClient, code)
}

func (a OAuthApp) exchangeStandard(ctx context.Context, httpClient *http.Client, code string) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	token, err := a.Config("").Exchange(ctx, code)
	if err == nil {
		return token, nil
	}

	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		if re.ErrorCode != "" {
			return nil, &TokenExchangeError{Code: re.ErrorCode, Description: re.ErrorDescription}
		}
		status := 0
		if re.Response != nil {
			status = re.Response.StatusCode
		}
		return nil, &UpstreamError{
			URL:        a.Endpoint.AccessTokenURL(),
			StatusCode: status,
			Body:       util.SafeTruncate(string(re.Body), maxBodyInError),
		}
	}
	return nil, fmt.Errorf("failed to exchange code: %w", err)
}

func (a OAuthApp) exchangeLegacy(ctx context.Context, httpClient *http.Client, code string) (*oauth2.Token, error) {
	q := url.Values{}
	q.Set("client_id", a.ClientID)
	q.Set("client_secret", a.ClientSecret)
	q.Set("code", code)
	if a.RedirectURL != "" {
		q.Set("redirect_uri", a.RedirectURL)
	}
	tokenURL := a.Endpoint.AccessTokenURL()

	req, err := http.NewRequestWithContext(ctx, a.Endpoint.Method(), tokenURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTokenResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{
			URL:        tokenURL,
			StatusCode: resp.StatusCode,
			Body:       util.SafeTruncate(string(body), maxBodyInError),
		}
	}

	return parseTokenResponse(resp.Header.Get("Content-Type"), body)
}

// parseTokenResponse reads a form-encoded or JSON token response.
func parseTokenResponse(contentType string, body []byte) (*oauth2.Token, error) {
	var fields tokenFields

	mediaType, _, _ := mime.ParseMediaType(contentType)
	if mediaType == "application/json" || strings.HasPrefix(strings.TrimSpace(string(body)), "{") {
		if err := json.Unmarshal(body, &fields); err != nil {
			return nil, &DecodeError{Resource: "access token", Err: err}
		}
	} else {
		vals, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, &DecodeError{Resource: "access token", Err: err}
		}
		fields = tokenFields{
			AccessToken:      vals.Get("access_token"),
			TokenType:        vals.Get("token_type"),
			Scope:            vals.Get("scope"),
			Error:            vals.Get("error"),
			ErrorDescription: vals.Get("error_description"),
		}
	}

	if fields.Error != "" {
		return nil, &TokenExchangeError{Code: fields.Error, Description: fields.ErrorDescription}
	}
	if fields.AccessToken == "" {
		return nil, &DecodeError{Resource: "access token", Err: ErrMissingAccessToken}
	}

	token := &oauth2.Token{
		AccessToken: fields.AccessToken,
		TokenType:   fields.TokenType,
	}
	return token.WithExtra(map[string]any{"scope": fields.Scope}), nil
}

type tokenFields struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	Scope            string `json:"scope"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}
