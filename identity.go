package authgithub

import (
	"strconv"

	"github.com/SonarSource/sonar-auth-github/providers/github"
	"github.com/SonarSource/sonar-auth-github/settings"
)

// uniqueLoginSuffix is appended to GitHub logins by settings.LoginStrategyUnique.
const uniqueLoginSuffix = "@github"

// Profile is everything fetched from GitHub during one callback.
type Profile struct {
	User            github.User
	Email           string
	SecondaryEmails []string
	// Teams is nil when group synchronization did not run.
	Teams []github.Team
}

// MapIdentity builds the Identity for profile. It performs no I/O.
func MapIdentity(profile Profile, strategy settings.LoginStrategy, caps Capabilities) (Identity, error) {
	login, err := generateLogin(profile.User.Login, strategy)
	if err != nil {
		return Identity{}, err
	}

	identity := Identity{
		ProviderLogin:   profile.User.Login,
		Login:           login,
		Name:            displayName(profile.User),
		Email:           profile.Email,
		SecondaryEmails: dedupe(profile.SecondaryEmails),
	}
	if caps.ProviderID {
		identity.ProviderID = strconv.FormatInt(profile.User.ID, 10)
	}
	if profile.Teams != nil {
		groups := make([]string, 0, len(profile.Teams))
		for _, team := range profile.Teams {
			groups = append(groups, team.Group())
		}
		identity.Groups = dedupe(groups)
	}
	return identity, nil
}

func generateLogin(providerLogin string, strategy settings.LoginStrategy) (string, error) {
	switch strategy {
	case settings.LoginStrategyProviderLogin:
		return providerLogin, nil
	case settings.LoginStrategyUnique:
		return providerLogin + uniqueLoginSuffix, nil
	default:
		return "", &settings.UnsupportedStrategyError{Value: string(strategy)}
	}
}

func displayName(u github.User) string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return u.Login
}

// dedupe keeps the first occurrence of each value. A non-nil input yields a
// non-nil result.
func dedupe(values []string) []string {
	if values == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
