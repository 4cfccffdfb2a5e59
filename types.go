package authgithub

import (
	"fmt"
	"strconv"
	"strings"
)

// Identity is the user record handed to the host after a successful callback.
type Identity struct {
	// ProviderID is GitHub's numeric user ID. Empty when the host does not
	// support provider IDs.
	ProviderID string

	// ProviderLogin is the GitHub login.
	ProviderLogin string

	// Login is the host-local login derived with the configured login strategy.
	Login string

	// Name is the display name, falling back to the GitHub login.
	Name string

	// Email is the primary email, empty when none could be resolved.
	Email string

	// SecondaryEmails are the other verified addresses.
	SecondaryEmails []string

	// Groups are "<organization>/<team>" entries. Nil when group
	// synchronization is disabled; empty when enabled and the user has no teams.
	Groups []string
}

// GroupsSynced reports whether Groups carries synchronized teams.
func (i Identity) GroupsSynced() bool {
	return i.Groups != nil
}

// InitContext is provided by the host when a user starts a GitHub login.
type InitContext interface {
	// GenerateCSRFState creates and remembers a one-time state value.
	GenerateCSRFState() string
	// RedirectTo sends the browser to url.
	RedirectTo(url string)
	// CallbackURL is the absolute URL GitHub must redirect back to.
	CallbackURL() string
}

// CallbackContext is provided by the host when GitHub redirects back.
type CallbackContext interface {
	// VerifyCSRFState checks the request's state against the one generated
	// during init and fails when they differ.
	VerifyCSRFState() error
	// RequestParam returns a query parameter of the callback request.
	RequestParam(name string) string
	// CallbackURL is the redirect URI used during init.
	CallbackURL() string
	// Authenticate registers or updates the user and opens a session.
	Authenticate(identity Identity) error
	// RedirectToRequestedPage sends the browser to the page that triggered login.
	RedirectToRequestedPage()
}

// ClientAddresser is optionally implemented by host contexts to expose the
// client address for audit logs.
type ClientAddresser interface {
	ClientIP() string
}

func clientIP(v any) string {
	if a, ok := v.(ClientAddresser); ok {
		return a.ClientIP()
	}
	return ""
}

// Display describes how the login button is rendered.
type Display struct {
	IconPath        string
	BackgroundColor string
}

// HostVersion is the version of the host's authentication API.
type HostVersion struct {
	Major int
	Minor int
}

// Versions at which host capabilities appeared.
var (
	// ProviderIDVersion is the first host version accepting Identity.ProviderID.
	ProviderIDVersion = HostVersion{Major: 7, Minor: 2}

	// CurrentHostVersion is assumed when Config.HostVersion is unset.
	CurrentHostVersion = HostVersion{Major: 7, Minor: 2}
)

// ParseHostVersion parses "major.minor" (extra components are ignored).
func ParseHostVersion(s string) (HostVersion, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) < 2 {
		return HostVersion{}, fmt.Errorf("invalid host version %q", s)
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil || major < 0 {
		return HostVersion{}, fmt.Errorf("invalid host version %q", s)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil || minor < 0 {
		return HostVersion{}, fmt.Errorf("invalid host version %q", s)
	}
	return HostVersion{Major: major, Minor: minor}, nil
}

// IsZero reports whether v is unset.
func (v HostVersion) IsZero() bool {
	return v == HostVersion{}
}

// AtLeast reports whether v >= other.
func (v HostVersion) AtLeast(other HostVersion) bool {
	if v.Major != other.Major {
		return v.Major > other.Major
	}
	return v.Minor >= other.Minor
}

func (v HostVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Capabilities are the optional host features negotiated once from HostVersion.
type Capabilities struct {
	ProviderID bool
}

// CapabilitiesFor returns the capabilities of a host running version v.
func CapabilitiesFor(v HostVersion) Capabilities {
	return Capabilities{
		ProviderID: v.AtLeast(ProviderIDVersion),
	}
}
