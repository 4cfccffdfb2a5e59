package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// Fixed values served by FakeGitHub unless overridden.
const (
	FakeCode        = "fake-authorization-code"
	FakeAccessToken = "e72e16c7e42f292c6912e7710c838347ae178b4a" //nolint:gosec // G101: fixture
)

// Token response formats.
const (
	TokenFormatForm = "form"
	TokenFormatJSON = "json"
)

// Request is one request received by FakeGitHub.
type Request struct {
	Method        string
	Path          string
	Query         url.Values
	Authorization string
	Accept        string
}

// FakeGitHub serves the OAuth token endpoint under WebURL and the REST API
// under APIURL. Fields may be changed between requests.
type FakeGitHub struct {
	Server *httptest.Server

	mu sync.Mutex

	// Code is the only authorization code accepted by the token endpoint.
	Code string
	// AccessToken is issued by the token endpoint and required on API calls.
	AccessToken string
	// TokenFormat selects form or JSON token responses.
	TokenFormat string
	// TokenError makes the token endpoint answer 200 with this OAuth error.
	TokenError string
	// TokenStatus overrides the token endpoint status when non-zero.
	TokenStatus int

	// UserJSON is the body of GET /user.
	UserJSON string
	// UserStatus overrides the /user status when non-zero.
	UserStatus int
	// EmailsJSON is the body of GET /user/emails.
	EmailsJSON string
	// TeamPages are the bodies of GET /user/teams, one per page.
	TeamPages []string
	// Memberships maps "org/login" to the membership status code (default 404).
	Memberships map[string]int

	requests []Request
}

// NewFakeGitHub starts a fake GitHub serving the octocat profile. The server
// is closed when the test ends.
func NewFakeGitHub(t testing.TB) *FakeGitHub {
	t.Helper()
	f := &FakeGitHub{
		Code:        FakeCode,
		AccessToken: FakeAccessToken,
		TokenFormat: TokenFormatForm,
		UserJSON:    `{"id":1,"login":"octocat","name":"monalisa octocat","email":"octocat@github.com"}`,
		EmailsJSON:  `[]`,
		TeamPages:   []string{`[]`},
		Memberships: map[string]int{},
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

// WebURL is the base URL of the OAuth endpoints, with a trailing slash.
func (f *FakeGitHub) WebURL() string {
	return f.Server.URL + "/"
}

// APIURL is the base URL of the REST API, with a trailing slash.
func (f *FakeGitHub) APIURL() string {
	return f.Server.URL + "/api/v3/"
}

// Set runs fn while holding the fake's lock.
func (f *FakeGitHub) Set(fn func(f *FakeGitHub)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

// Requests returns all requests received so far.
func (f *FakeGitHub) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Request, len(f.requests))
	copy(out, f.requests)
	return out
}

// Count returns how many requests hit path.
func (f *FakeGitHub) Count(path string) int {
	n := 0
	for _, r := range f.Requests() {
		if r.Path == path {
			n++
		}
	}
	return n
}

func (f *FakeGitHub) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, Request{
		Method:        r.Method,
		Path:          r.URL.Path,
		Query:         r.URL.Query(),
		Authorization: r.Header.Get("Authorization"),
		Accept:        r.Header.Get("Accept"),
	})

	if r.URL.Path == "/login/oauth/access_token" {
		f.serveToken(w, r)
		return
	}

	path, ok := strings.CutPrefix(r.URL.Path, "/api/v3/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if r.Header.Get("Authorization") != "Bearer "+f.AccessToken {
		writeJSON(w, http.StatusUnauthorized, `{"message":"Bad credentials"}`)
		return
	}

	switch {
	case path == "user":
		status := f.UserStatus
		if status == 0 {
			status = http.StatusOK
		}
		writeJSON(w, status, f.UserJSON)
	case path == "user/emails":
		writeJSON(w, http.StatusOK, f.EmailsJSON)
	case path == "user/teams":
		f.serveTeams(w, r)
	case strings.HasPrefix(path, "orgs/"):
		f.serveMembership(w, path)
	default:
		writeJSON(w, http.StatusNotFound, `{"message":"Not Found"}`)
	}
}

func (f *FakeGitHub) serveToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if f.TokenStatus != 0 {
		http.Error(w, "token endpoint failure", f.TokenStatus)
		return
	}

	values := url.Values{}
	switch {
	case f.TokenError != "":
		values.Set("error", f.TokenError)
		values.Set("error_description", "The code passed is incorrect or expired.")
	case r.Form.Get("code") != f.Code:
		values.Set("error", "bad_verification_code")
		values.Set("error_description", "The code passed is incorrect or expired.")
	default:
		values.Set("access_token", f.AccessToken)
		values.Set("scope", "user,gist")
		values.Set("token_type", "bearer")
	}

	if f.TokenFormat == TokenFormatJSON {
		body := map[string]string{}
		for k := range values {
			body[k] = values.Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
		return
	}
	w.Header().Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")
	_, _ = w.Write([]byte(values.Encode()))
}

func (f *FakeGitHub) serveTeams(w http.ResponseWriter, r *http.Request) {
	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 || n > len(f.TeamPages) {
			writeJSON(w, http.StatusOK, `[]`)
			return
		}
		page = n
	}

	var links []string
	if page < len(f.TeamPages) {
		links = append(links, fmt.Sprintf(`<%suser/teams?per_page=100&page=%d>; rel="next"`, f.APIURL(), page+1))
		links = append(links, fmt.Sprintf(`<%suser/teams?per_page=100&page=%d>; rel="last"`, f.APIURL(), len(f.TeamPages)))
	}
	if page > 1 {
		links = append(links, fmt.Sprintf(`<%suser/teams?per_page=100&page=1>; rel="first"`, f.APIURL()))
	}
	if len(links) > 0 {
		w.Header().Set("Link", strings.Join(links, ", "))
	}
	body := `[]`
	if len(f.TeamPages) > 0 {
		body = f.TeamPages[page-1]
	}
	writeJSON(w, http.StatusOK, body)
}

func (f *FakeGitHub) serveMembership(w http.ResponseWriter, path string) {
	// orgs/{org}/members/{login}
	parts := strings.Split(path, "/")
	if len(parts) != 4 || parts[2] != "members" {
		writeJSON(w, http.StatusNotFound, `{"message":"Not Found"}`)
		return
	}
	status, ok := f.Memberships[parts[1]+"/"+parts[3]]
	if !ok {
		status = http.StatusNotFound
	}
	switch status {
	case http.StatusNoContent:
		w.WriteHeader(status)
	case http.StatusFound:
		w.Header().Set("Location", f.APIURL()+"orgs/"+parts[1]+"/public_members/"+parts[3])
		w.WriteHeader(status)
	default:
		writeJSON(w, status, `{"message":"membership lookup"}`)
	}
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
