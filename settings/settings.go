package settings

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/SonarSource/sonar-auth-github/internal/util"
)

// Property keys read by Settings.
const (
	KeyEnabled            = "sonar.auth.github.enabled"
	KeyClientID           = "sonar.auth.github.clientId.secured"
	KeyClientSecret       = "sonar.auth.github.clientSecret.secured" //nolint:gosec // G101: property key, not a credential
	KeyAllowUsersToSignUp = "sonar.auth.github.allowUsersToSignUp"
	KeyLoginStrategy      = "sonar.auth.github.loginStrategy"
	KeyGroupsSync         = "sonar.auth.github.groupsSync"
	KeyAPIURL             = "sonar.auth.github.apiUrl"
	KeyWebURL             = "sonar.auth.github.webUrl"
	KeyOrganizations      = "sonar.auth.github.organizations"
)

// Default base URLs for github.com.
const (
	DefaultAPIURL = "https://api.github.com/"
	DefaultWebURL = "https://github.com/"
)

// Store is the key-value configuration source consumed by Settings.
// Get reports whether key is set; multi-valued properties are stored as a
// single comma-separated string.
type Store interface {
	Get(key string) (string, bool)
}

// LoginStrategy selects how the host-local login is derived from the GitHub login.
type LoginStrategy string

const (
	// LoginStrategyUnique generates "<login>@github", unique across providers.
	LoginStrategyUnique LoginStrategy = "Unique"

	// LoginStrategyProviderLogin reuses the GitHub login verbatim.
	LoginStrategyProviderLogin LoginStrategy = "Same as GitHub login"
)

// UnsupportedStrategyError is returned when the configured login strategy is
// neither LoginStrategyUnique nor LoginStrategyProviderLogin.
type UnsupportedStrategyError struct {
	Value string
}

// Error implements the error interface
func (e *UnsupportedStrategyError) Error() string {
	return fmt.Sprintf("login strategy not supported: %q", e.Value)
}

// ParseLoginStrategy converts a configured value into a LoginStrategy.
func ParseLoginStrategy(value string) (LoginStrategy, error) {
	switch s := LoginStrategy(value); s {
	case LoginStrategyUnique, LoginStrategyProviderLogin:
		return s, nil
	default:
		return "", &UnsupportedStrategyError{Value: value}
	}
}

// Settings is a read-through view over a Store.
type Settings struct {
	store    Store
	defaults map[string]string
}

// New creates a Settings view over store, using Definitions for defaults.
func New(store Store) *Settings {
	defaults := make(map[string]string)
	for _, def := range Definitions() {
		if def.DefaultValue != "" {
			defaults[def.Key] = def.DefaultValue
		}
	}
	return &Settings{store: store, defaults: defaults}
}

func (s *Settings) lookup(key string) (string, bool) {
	if s.store != nil {
		if v, ok := s.store.Get(key); ok {
			return v, true
		}
	}
	v, ok := s.defaults[key]
	return v, ok
}

func (s *Settings) getString(key string) string {
	v, _ := s.lookup(key)
	return strings.TrimSpace(v)
}

func (s *Settings) getBool(key string) bool {
	v, ok := s.lookup(key)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false
	}
	return b
}

// ClientID returns the OAuth App client ID, or "" when unset.
func (s *Settings) ClientID() string {
	return s.getString(KeyClientID)
}

// ClientSecret returns the OAuth App client secret, or "" when unset.
func (s *Settings) ClientSecret() string {
	return s.getString(KeyClientSecret)
}

// IsEnabled reports whether the enabled flag is set and both client ID and
// secret are non-empty. All three values are read at the moment of the call.
func (s *Settings) IsEnabled() bool {
	return s.getBool(KeyEnabled) && s.ClientID() != "" && s.ClientSecret() != ""
}

// AllowUsersToSignUp reports whether unknown users may be created by the host.
func (s *Settings) AllowUsersToSignUp() bool {
	return s.getBool(KeyAllowUsersToSignUp)
}

// LoginStrategy returns the raw configured login strategy.
// Use ParseLoginStrategy to validate it.
func (s *Settings) LoginStrategy() string {
	return s.getString(KeyLoginStrategy)
}

// SyncGroups reports whether team memberships are mapped to groups.
func (s *Settings) SyncGroups() bool {
	return s.getBool(KeyGroupsSync)
}

// APIURL returns the GitHub REST API base URL, always ending with "/".
// Returns "" only if the store explicitly sets an empty value.
func (s *Settings) APIURL() string {
	return util.WithTrailingSlash(s.getString(KeyAPIURL))
}

// WebURL returns the GitHub web base URL, always ending with "/".
// Returns "" only if the store explicitly sets an empty value.
func (s *Settings) WebURL() string {
	return util.WithTrailingSlash(s.getString(KeyWebURL))
}

// Organizations returns the configured organizations in order, each trimmed
// of surrounding whitespace. The result is empty (never nil) when unset.
func (s *Settings) Organizations() []string {
	v, _ := s.lookup(KeyOrganizations)
	return util.SplitAndTrim(v)
}
