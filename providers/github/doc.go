// Package github talks to GitHub and GitHub Enterprise on behalf of the
// authentication flow: it describes the OAuth endpoints, exchanges
// authorization codes for access tokens, and reads the authenticated user's
// profile, emails, teams and organization memberships from the v3 REST API.
//
// GitHub OAuth differs from OIDC providers in several key ways:
//   - No OIDC discovery: endpoints are derived from the configured web URL
//   - Non-expiring tokens: OAuth Apps issue tokens without refresh tokens
//   - Email privacy: the profile email may be hidden, requiring /user/emails
//
// # Token Exchange Variants
//
// TokenExchangeLegacy issues a GET against login/oauth/access_token and reads
// the form-encoded response (access_token=...&scope=...&token_type=...).
// TokenExchangeStandard POSTs the code through golang.org/x/oauth2 and accepts
// JSON or form responses.
//
// # Organization Membership
//
// IsOrganizationMember maps the membership endpoint's status codes: 204 means
// member, 302 and 404 mean not a member, anything else is an UpstreamError.
// Redirects are never followed for this call.
//
// # Pagination
//
// GetTeams follows RFC 5988 Link headers with rel="next" until the last page.
// ClientConfig.MaxTeamPages optionally bounds the number of pages.
//
// # Example Usage
//
//	app := github.OAuthApp{
//	    ClientID:     clientID,
//	    ClientSecret: clientSecret,
//	    RedirectURL:  "https://sonar.example.com/oauth2/callback/github",
//	    Endpoint:     github.NewEndpoint("https://github.com/", github.TokenExchangeLegacy),
//	}
//	token, err := app.Exchange(ctx, http.DefaultClient, code)
//	if err != nil {
//	    return err
//	}
//	client := github.NewClient(github.ClientConfig{APIURL: "https://api.github.com/"}, token)
//	user, err := client.GetUser(ctx)
package github
