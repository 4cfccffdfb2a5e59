package github

import (
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	oauthgithub "golang.org/x/oauth2/github"

	"github.com/SonarSource/sonar-auth-github/internal/util"
)

// TokenExchange selects how authorization codes are exchanged for tokens.
type TokenExchange string

const (
	// TokenExchangeLegacy sends a GET request and reads a form-encoded response.
	TokenExchangeLegacy TokenExchange = "legacy"

	// TokenExchangeStandard sends a POST request through golang.org/x/oauth2.
	TokenExchangeStandard TokenExchange = "standard"
)

// ParseTokenExchange returns the variant named by value. The empty string
// selects TokenExchangeLegacy.
func ParseTokenExchange(value string) (TokenExchange, error) {
	switch TokenExchange(value) {
	case "", TokenExchangeLegacy:
		return TokenExchangeLegacy, nil
	case TokenExchangeStandard:
		return TokenExchangeStandard, nil
	default:
		return "", fmt.Errorf("unsupported token exchange variant %q", value)
	}
}

const (
	authorizePath   = "login/oauth/authorize"
	accessTokenPath = "login/oauth/access_token" //nolint:gosec // G101: URL path, not a credential
)

// Endpoint describes the OAuth endpoints of a GitHub instance.
type Endpoint struct {
	webURL   string
	exchange TokenExchange
}

// NewEndpoint returns the endpoint descriptor for the instance served at
// webURL (for example https://github.com/ or https://ghe.example.com/).
func NewEndpoint(webURL string, exchange TokenExchange) Endpoint {
	if exchange == "" {
		exchange = TokenExchangeLegacy
	}
	return Endpoint{webURL: util.WithTrailingSlash(webURL), exchange: exchange}
}

// AuthorizeURL is the page users are redirected to.
func (e Endpoint) AuthorizeURL() string {
	return e.webURL + authorizePath
}

// AccessTokenURL is the code exchange endpoint.
func (e Endpoint) AccessTokenURL() string {
	return e.webURL + accessTokenPath
}

// TokenExchange returns the configured exchange variant.
func (e Endpoint) TokenExchange() TokenExchange {
	return e.exchange
}

// Method is the HTTP verb used against AccessTokenURL.
func (e Endpoint) Method() string {
	if e.exchange == TokenExchangeStandard {
		return http.MethodPost
	}
	return http.MethodGet
}

// OAuth2 returns the endpoint in golang.org/x/oauth2 form. Client credentials
// are always sent as parameters, which GitHub Enterprise requires.
func (e Endpoint) OAuth2() oauth2.Endpoint {
	if e.IsPublicGitHub() {
		endpoint := oauthgithub.Endpoint
		endpoint.AuthStyle = oauth2.AuthStyleInParams
		return endpoint
	}
	return oauth2.Endpoint{
		AuthURL:   e.AuthorizeURL(),
		TokenURL:  e.AccessTokenURL(),
		AuthStyle: oauth2.AuthStyleInParams,
	}
}

// IsPublicGitHub reports whether the endpoint points at github.com.
func (e Endpoint) IsPublicGitHub() bool {
	return e.AuthorizeURL() == oauthgithub.Endpoint.AuthURL &&
		e.AccessTokenURL() == oauthgithub.Endpoint.TokenURL
}
