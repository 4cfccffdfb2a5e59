package github

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// User is the authenticated user's profile from GET /user.
type User struct {
	ID    int64   `json:"id"`
	Login string  `json:"login"`
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// Email is one entry of GET /user/emails.
type Email struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// Team is one entry of GET /user/teams.
type Team struct {
	Slug         string           `json:"slug"`
	Organization TeamOrganization `json:"organization"`
}

// TeamOrganization is the organization a team belongs to.
type TeamOrganization struct {
	Login string `json:"login"`
}

// Group returns the team as "<organization>/<slug>".
func (t Team) Group() string {
	return t.Organization.Login + "/" + t.Slug
}

// PrimaryEmail returns the address flagged both primary and verified.
func PrimaryEmail(emails []Email) (string, bool) {
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, true
		}
	}
	return "", false
}

// SecondaryEmails returns every verified address that is not the primary one.
func SecondaryEmails(emails []Email) []string {
	var out []string
	for _, e := range emails {
		if e.Verified && !e.Primary && e.Email != "" {
			out = append(out, e.Email)
		}
	}
	return out
}

var (
	errNotObject = errors.New("expected a JSON object")
	errNotArray  = errors.New("expected a JSON array")
)

func decodeUser(body []byte) (*User, error) {
	if !hasPrefix(body, '{') {
		return nil, &DecodeError{Resource: "user", Err: errNotObject}
	}
	var u User
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, &DecodeError{Resource: "user", Err: err}
	}
	if u.Login == "" {
		return nil, &DecodeError{Resource: "user", Err: errors.New("login is missing")}
	}
	return &u, nil
}

func decodeEmails(body []byte) ([]Email, error) {
	if !hasPrefix(body, '[') {
		return nil, &DecodeError{Resource: "emails", Err: errNotArray}
	}
	var emails []Email
	if err := json.Unmarshal(body, &emails); err != nil {
		return nil, &DecodeError{Resource: "emails", Err: err}
	}
	return emails, nil
}

func decodeTeams(body []byte) ([]Team, error) {
	if !hasPrefix(body, '[') {
		return nil, &DecodeError{Resource: "teams", Err: errNotArray}
	}
	var teams []Team
	if err := json.Unmarshal(body, &teams); err != nil {
		return nil, &DecodeError{Resource: "teams", Err: err}
	}
	for i, t := range teams {
		if t.Slug == "" || t.Organization.Login == "" {
			return nil, &DecodeError{Resource: "teams", Err: fmt.Errorf("team %d has no slug or organization", i)}
		}
	}
	return teams, nil
}

func hasPrefix(body []byte, c byte) bool {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == c
}
