package settings

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// githubEnv holds raw environment values for the GitHub settings.
// Every field is a string so that unset variables can be told apart from
// explicit "false" values; empty values are treated as unset.
type githubEnv struct {
	Enabled            string   `env:"SONAR_AUTH_GITHUB_ENABLED"`
	ClientID           string   `env:"SONAR_AUTH_GITHUB_CLIENT_ID"`
	ClientSecret       string   `env:"SONAR_AUTH_GITHUB_CLIENT_SECRET"`
	AllowUsersToSignUp string   `env:"SONAR_AUTH_GITHUB_ALLOW_USERS_TO_SIGN_UP"`
	LoginStrategy      string   `env:"SONAR_AUTH_GITHUB_LOGIN_STRATEGY"`
	GroupsSync         string   `env:"SONAR_AUTH_GITHUB_GROUPS_SYNC"`
	APIURL             string   `env:"SONAR_AUTH_GITHUB_API_URL"`
	WebURL             string   `env:"SONAR_AUTH_GITHUB_WEB_URL"`
	Organizations      []string `env:"SONAR_AUTH_GITHUB_ORGANIZATIONS" envSeparator:","`
}

// LoadEnv reads the GitHub settings from environment variables and returns
// them as a MapStore. The environment is read once; later changes require
// calling LoadEnv again.
func LoadEnv() (*MapStore, error) {
	var raw githubEnv
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	store := NewMapStore(nil)
	setIfPresent := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			store.Set(key, value)
		}
	}
	setIfPresent(KeyEnabled, raw.Enabled)
	setIfPresent(KeyClientID, raw.ClientID)
	setIfPresent(KeyClientSecret, raw.ClientSecret)
	setIfPresent(KeyAllowUsersToSignUp, raw.AllowUsersToSignUp)
	setIfPresent(KeyLoginStrategy, raw.LoginStrategy)
	setIfPresent(KeyGroupsSync, raw.GroupsSync)
	setIfPresent(KeyAPIURL, raw.APIURL)
	setIfPresent(KeyWebURL, raw.WebURL)
	if len(raw.Organizations) > 0 {
		store.SetList(KeyOrganizations, raw.Organizations)
	}
	return store, nil
}
