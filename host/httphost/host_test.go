package httphost

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	authgithub "github.com/SonarSource/sonar-auth-github"
	"github.com/SonarSource/sonar-auth-github/internal/testutil"
	"github.com/SonarSource/sonar-auth-github/providers/github"
	"github.com/SonarSource/sonar-auth-github/security"
	"github.com/SonarSource/sonar-auth-github/settings"
)

const testBaseURL = "http://sonar.example.com"

type recorder struct {
	mu         sync.Mutex
	identities []authgithub.Identity
	reject     error
}

func (r *recorder) authenticate(_ context.Context, w http.ResponseWriter, identity authgithub.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reject != nil {
		return r.reject
	}
	r.identities = append(r.identities, identity)
	http.SetCookie(w, &http.Cookie{Name: "JWT-SESSION", Value: identity.Login, Path: "/"})
	return nil
}

type testEnv struct {
	fake  *testutil.FakeGitHub
	store *settings.MapStore
	rec   *recorder
}

func newTestHost(t *testing.T, cfg Config) (*Host, *testutil.FakeGitHub, *recorder) {
	t.Helper()
	host, env := newTestHostEnv(t, cfg)
	return host, env.fake, env.rec
}

func newTestHostEnv(t *testing.T, cfg Config) (*Host, testEnv) {
	t.Helper()
	fake := testutil.NewFakeGitHub(t)
	store := settings.NewMapStore(map[string]string{
		settings.KeyEnabled:      "true",
		settings.KeyClientID:     "the_id",
		settings.KeyClientSecret: "the_secret",
		settings.KeyWebURL:       fake.WebURL(),
		settings.KeyAPIURL:       fake.APIURL(),
	})
	logger, _ := testutil.NewBufferLogger()
	provider, err := authgithub.New(store, &authgithub.Config{Logger: logger})
	if err != nil {
		t.Fatalf("authgithub.New() error = %v", err)
	}

	rec := &recorder{}
	cfg.BaseURL = testBaseURL
	cfg.Authenticate = rec.authenticate
	if cfg.Logger == nil {
		cfg.Logger = logger
	}
	host, err := New(provider, cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(host.Close)
	return host, testEnv{fake: fake, store: store, rec: rec}
}

func stateCookieFrom(t *testing.T, res *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range res.Cookies() {
		if c.Name == stateCookieName {
			return c
		}
	}
	t.Fatal("state cookie not set")
	return nil
}

// login runs the login route and returns the state sent to GitHub and the
// state cookie.
func login(t *testing.T, h http.Handler, target string) (string, *http.Cookie) {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	res := w.Result()
	if res.StatusCode != http.StatusFound {
		t.Fatalf("login status = %d, want %d", res.StatusCode, http.StatusFound)
	}
	location, err := url.Parse(res.Header.Get("Location"))
	if err != nil {
		t.Fatalf("invalid Location: %v", err)
	}
	return location.Query().Get("state"), stateCookieFrom(t, res)
}

func callback(h http.Handler, query string, cookie *http.Cookie) *http.Response {
	req := httptest.NewRequest(http.MethodGet, DefaultCallbackPath+"?"+query, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w.Result()
}

func TestNew_Validation(t *testing.T) {
	authenticate := func(context.Context, http.ResponseWriter, authgithub.Identity) error { return nil }
	provider := &authgithub.IdentityProvider{}

	tests := []struct {
		name     string
		provider Provider
		cfg      Config
	}{
		{name: "missing provider", cfg: Config{BaseURL: testBaseURL, Authenticate: authenticate}},
		{name: "missing authenticate", provider: provider, cfg: Config{BaseURL: testBaseURL}},
		{name: "missing base URL", provider: provider, cfg: Config{Authenticate: authenticate}},
		{name: "short state key", provider: provider, cfg: Config{BaseURL: testBaseURL, Authenticate: authenticate, StateKey: []byte("short")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.provider, tt.cfg); err == nil {
				t.Error("New() should fail")
			}
		})
	}
}

func TestHost_CallbackURL(t *testing.T) {
	host, _, _ := newTestHost(t, Config{})
	if got, want := host.CallbackURL(), testBaseURL+DefaultCallbackPath; got != want {
		t.Errorf("CallbackURL() = %q, want %q", got, want)
	}
}

func TestHost_Login(t *testing.T) {
	host, fake, _ := newTestHost(t, Config{})

	w := httptest.NewRecorder()
	host.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, DefaultLoginPath, nil))
	res := w.Result()

	if res.StatusCode != http.StatusFound {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusFound)
	}
	location := res.Header.Get("Location")
	if !strings.HasPrefix(location, fake.WebURL()+"login/oauth/authorize?") {
		t.Errorf("Location = %q, want the GitHub authorize URL", location)
	}
	u, _ := url.Parse(location)
	if got := u.Query().Get("redirect_uri"); got != testBaseURL+DefaultCallbackPath {
		t.Errorf("redirect_uri = %q", got)
	}
	if u.Query().Get("state") == "" {
		t.Error("state must be sent to GitHub")
	}

	cookie := stateCookieFrom(t, res)
	if !cookie.HttpOnly {
		t.Error("state cookie must be HttpOnly")
	}
	if cookie.Path != DefaultCallbackPath {
		t.Errorf("state cookie path = %q, want %q", cookie.Path, DefaultCallbackPath)
	}
	if cookie.Secure {
		t.Error("state cookie must not be Secure on a plain HTTP base URL")
	}
	if strings.Contains(cookie.Value, u.Query().Get("state")) {
		t.Error("state cookie must not contain the state in clear")
	}

	if res.Header.Get(security.RequestIDHeader) == "" {
		t.Error("request ID header should be set")
	}
	if res.Header.Get("X-Frame-Options") != "DENY" {
		t.Error("security headers should be set")
	}
}

func TestHost_LoginAndCallback(t *testing.T) {
	tests := []struct {
		name         string
		loginTarget  string
		wantLocation string
	}{
		{name: "default page", loginTarget: DefaultLoginPath, wantLocation: "/"},
		{name: "requested page", loginTarget: DefaultLoginPath + "?return_to=%2Fprojects%3Fsort%3Dname", wantLocation: "/projects?sort=name"},
		{name: "absolute URL ignored", loginTarget: DefaultLoginPath + "?return_to=https%3A%2F%2Fevil.example", wantLocation: "/"},
		{name: "protocol relative URL ignored", loginTarget: DefaultLoginPath + "?return_to=%2F%2Fevil.example", wantLocation: "/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, _, rec := newTestHost(t, Config{})
			h := host.Handler()

			state, cookie := login(t, h, tt.loginTarget)
			res := callback(h, url.Values{"code": {testutil.FakeCode}, "state": {state}}.Encode(), cookie)

			if res.StatusCode != http.StatusFound {
				t.Fatalf("callback status = %d, want %d", res.StatusCode, http.StatusFound)
			}
			if got := res.Header.Get("Location"); got != tt.wantLocation {
				t.Errorf("Location = %q, want %q", got, tt.wantLocation)
			}
			if len(rec.identities) != 1 || rec.identities[0].Login != "octocat@github" {
				t.Fatalf("identities = %+v, want octocat@github", rec.identities)
			}

			var cleared, session bool
			for _, c := range res.Cookies() {
				if c.Name == stateCookieName && c.MaxAge < 0 {
					cleared = true
				}
				if c.Name == "JWT-SESSION" {
					session = true
				}
			}
			if !cleared {
				t.Error("state cookie should be cleared on callback")
			}
			if !session {
				t.Error("authenticate should be able to write the response")
			}
		})
	}
}

func TestHost_Callback_CSRF(t *testing.T) {
	host, _, _ := newTestHost(t, Config{})
	h := host.Handler()
	state, cookie := login(t, h, DefaultLoginPath)

	otherHost, _, _ := newTestHost(t, Config{})
	_, foreignCookie := login(t, otherHost.Handler(), DefaultLoginPath)

	tests := []struct {
		name   string
		state  string
		cookie *http.Cookie
	}{
		{name: "missing cookie", state: state},
		{name: "missing state", cookie: cookie},
		{name: "wrong state", state: "forged", cookie: cookie},
		{name: "cookie sealed with another key", state: state, cookie: foreignCookie},
		{name: "tampered cookie", state: state, cookie: &http.Cookie{Name: stateCookieName, Value: cookie.Value[:len(cookie.Value)-2] + "AA"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callback(h, url.Values{"code": {testutil.FakeCode}, "state": {tt.state}}.Encode(), tt.cookie)
			if res.StatusCode != http.StatusForbidden {
				t.Errorf("status = %d, want %d", res.StatusCode, http.StatusForbidden)
			}
		})
	}
}

func TestHost_Callback_Errors(t *testing.T) {
	tests := []struct {
		name       string
		query      func(state string) string
		setup      func(env testEnv)
		wantStatus int
		wantBody   string
	}{
		{
			name:       "access denied",
			query:      func(state string) string { return "error=access_denied&state=" + state },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing code",
			query:      func(state string) string { return "state=" + state },
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "upstream failure",
			query:      func(state string) string { return "code=" + testutil.FakeCode + "&state=" + state },
			setup:      func(env testEnv) { env.fake.UserStatus = http.StatusInternalServerError },
			wantStatus: http.StatusBadGateway,
		},
		{
			name:  "not a member",
			query: func(state string) string { return "code=" + testutil.FakeCode + "&state=" + state },
			setup: func(env testEnv) {
				env.store.SetList(settings.KeyOrganizations, []string{"example"})
			},
			wantStatus: http.StatusForbidden,
			wantBody:   "must be a member of at least one organization",
		},
		{
			name:       "host rejects",
			query:      func(state string) string { return "code=" + testutil.FakeCode + "&state=" + state },
			setup:      func(env testEnv) { env.rec.reject = errors.New("sign up disabled") },
			wantStatus: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, env := newTestHostEnv(t, Config{})
			if tt.setup != nil {
				tt.setup(env)
			}
			h := host.Handler()
			state, cookie := login(t, h, DefaultLoginPath)

			res := callback(h, tt.query(url.QueryEscape(state)), cookie)
			if res.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", res.StatusCode, tt.wantStatus)
			}
			if tt.wantBody != "" {
				body, _ := io.ReadAll(res.Body)
				if !strings.Contains(string(body), tt.wantBody) {
					t.Errorf("body = %q, want it to contain %q", body, tt.wantBody)
				}
			}
			if len(env.rec.identities) != 0 {
				t.Errorf("no identity should be authenticated, got %+v", env.rec.identities)
			}
		})
	}
}

func TestHost_RateLimit(t *testing.T) {
	var rejected int
	auditor := security.NewAuditor(nil, true)
	auditor.OnEvent(func(eventType string) {
		if eventType == security.EventRateLimitExceeded {
			rejected++
		}
	})
	host, _, _ := newTestHost(t, Config{RateLimit: 1, RateBurst: 2, Auditor: auditor})
	h := host.Handler()

	codes := make([]int, 0, 3)
	for range 3 {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, DefaultLoginPath, nil))
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusFound || codes[1] != http.StatusFound || codes[2] != http.StatusTooManyRequests {
		t.Errorf("status codes = %v, want [302 302 429]", codes)
	}
	if rejected != 1 {
		t.Errorf("rate limit audit events = %d, want 1", rejected)
	}
}

func TestHost_ProviderDisabled(t *testing.T) {
	store := settings.NewMapStore(nil)
	provider, err := authgithub.New(store, &authgithub.Config{})
	if err != nil {
		t.Fatal(err)
	}
	host, err := New(provider, Config{
		BaseURL:      testBaseURL,
		Authenticate: func(context.Context, http.ResponseWriter, authgithub.Identity) error { return nil },
	})
	if err != nil {
		t.Fatal(err)
	}
	defer host.Close()

	w := httptest.NewRecorder()
	host.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, DefaultLoginPath, nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{authgithub.ErrProviderDisabled, http.StatusNotFound},
		{fmt.Errorf("%w: %w", authgithub.ErrCSRFMismatch, errors.New("x")), http.StatusForbidden},
		{authgithub.ErrMissingCode, http.StatusBadRequest},
		{errors.Join(errors.New("seal failed"), authgithub.ErrMissingState), http.StatusInternalServerError},
		{&authgithub.AuthorizationDeniedError{Code: "access_denied"}, http.StatusUnauthorized},
		{&authgithub.UnauthorizedError{Login: "octocat", Organizations: []string{"example"}}, http.StatusForbidden},
		{&github.UpstreamError{URL: "https://api.github.com/user", StatusCode: 500}, http.StatusBadGateway},
		{&github.TokenExchangeError{Code: "bad_verification_code"}, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusCode(tt.err); got != tt.want {
			t.Errorf("StatusCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
