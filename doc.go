// Package authgithub lets a code-quality host authenticate users with GitHub
// or GitHub Enterprise.
//
// The host calls IdentityProvider.Init to send the browser to GitHub's
// authorize page and IdentityProvider.Callback when GitHub redirects back.
// The callback verifies the CSRF state, exchanges the authorization code,
// reads the user's profile, emails and (optionally) teams, enforces the
// configured organization membership and hands an Identity to the host.
//
// Configuration is read through a settings.Store on every call, so changes
// made in the host take effect without a restart.
//
// # Usage
//
//	store := settings.NewMapStore(nil)
//	store.Set(settings.KeyEnabled, "true")
//	store.Set(settings.KeyClientID, clientID)
//	store.Set(settings.KeyClientSecret, clientSecret)
//
//	provider, err := authgithub.New(store, &authgithub.Config{Logger: logger})
//	if err != nil {
//	    return err
//	}
//	// in the host's login route
//	err = provider.Init(ctx, initContext)
//	// in the host's callback route
//	err = provider.Callback(ctx, callbackContext)
//
// # Errors
//
// Every failure aborts the flow and no identity is produced. Callers can
// classify failures with errors.Is and errors.As:
//   - ErrProviderDisabled, ErrCSRFMismatch, ErrMissingState, ErrMissingCode
//   - *AuthorizationDeniedError when the user declined on GitHub
//   - *UnauthorizedError when the organization gate rejects the user
//   - *github.UpstreamError, *github.TokenExchangeError, *github.DecodeError
//   - *settings.UnsupportedStrategyError for an invalid login strategy
package authgithub
