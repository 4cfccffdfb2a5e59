// Package httphost is a reference net/http host for the GitHub identity
// provider. It serves the login and callback routes and implements the
// provider's init and callback contexts.
//
// The CSRF state and the page to return to are kept in a single
// XChaCha20-Poly1305 sealed cookie scoped to the callback path, so the host
// needs no server-side session store. The cookie is cleared on every
// callback, making each state single use.
//
// # Usage
//
//	host, err := httphost.New(provider, httphost.Config{
//	    BaseURL: "https://sonar.example.com",
//	    Authenticate: func(ctx context.Context, id authgithub.Identity) error {
//	        return users.Upsert(ctx, id)
//	    },
//	})
//	if err != nil {
//	    return err
//	}
//	defer host.Close()
//	http.ListenAndServe(":9000", host.Handler())
package httphost
