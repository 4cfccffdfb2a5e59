package settings

import (
	"fmt"
	"strconv"
)

// PropertyType is the value type of a property definition.
type PropertyType string

// Property types understood by the host's settings UI.
const (
	PropertyTypeString           PropertyType = "STRING"
	PropertyTypeBoolean          PropertyType = "BOOLEAN"
	PropertyTypeSingleSelectList PropertyType = "SINGLE_SELECT_LIST"
)

const (
	category    = "github"
	subCategory = "authentication"
)

// Definition describes one configurable property so the host can register it.
type Definition struct {
	Key          string
	Name         string
	Description  string
	Category     string
	SubCategory  string
	Type         PropertyType
	DefaultValue string
	Options      []string
	MultiValues  bool
	Index        int
}

// Definitions returns the property definitions in display order.
// A new slice is returned on every call.
func Definitions() []Definition {
	defs := []Definition{
		{
			Key:          KeyEnabled,
			Name:         "Enabled",
			Description:  "Enable GitHub users to login. Value is ignored if client ID and secret are not defined.",
			Type:         PropertyTypeBoolean,
			DefaultValue: strconv.FormatBool(false),
		},
		{
			Key:         KeyClientID,
			Name:        "Client ID",
			Description: "Client ID provided by GitHub when registering the application.",
		},
		{
			Key:         KeyClientSecret,
			Name:        "Client Secret",
			Description: "Client password provided by GitHub when registering the application.",
		},
		{
			Key:          KeyAllowUsersToSignUp,
			Name:         "Allow users to sign-up",
			Description:  "Allow new users to authenticate. When set to 'false', only existing users will be able to authenticate to the server.",
			Type:         PropertyTypeBoolean,
			DefaultValue: strconv.FormatBool(true),
		},
		{
			Key:  KeyLoginStrategy,
			Name: "Login generation strategy",
			Description: fmt.Sprintf("When the login strategy is set to '%s', the user's login will be auto-generated the first time so that it is unique. "+
				"When the login strategy is set to '%s', the user's login will be the GitHub login.",
				LoginStrategyUnique, LoginStrategyProviderLogin),
			Type:         PropertyTypeSingleSelectList,
			DefaultValue: string(LoginStrategyUnique),
			Options:      []string{string(LoginStrategyUnique), string(LoginStrategyProviderLogin)},
		},
		{
			Key:          KeyGroupsSync,
			Name:         "Synchronize teams as groups",
			Description:  "For each team they belong to, the user will be associated to a group named 'Organization/Team' (if it exists).",
			Type:         PropertyTypeBoolean,
			DefaultValue: strconv.FormatBool(false),
		},
		{
			Key:          KeyAPIURL,
			Name:         "The API url for a GitHub instance.",
			Description:  "The API url for a GitHub instance. https://api.github.com/ for github.com, https://github.company.com/api/v3/ when using GitHub Enterprise.",
			Type:         PropertyTypeString,
			DefaultValue: DefaultAPIURL,
		},
		{
			Key:          KeyWebURL,
			Name:         "The WEB url for a GitHub instance.",
			Description:  "The WEB url for a GitHub instance. https://github.com/ for github.com, https://github.company.com/ when using GitHub Enterprise.",
			Type:         PropertyTypeString,
			DefaultValue: DefaultWebURL,
		},
		{
			Key:         KeyOrganizations,
			Name:        "Organizations",
			Description: "Only members of these organizations will be able to authenticate to the server. If a user is a member of any of the organizations listed they will be authenticated.",
			MultiValues: true,
		},
	}

	for i := range defs {
		defs[i].Category = category
		defs[i].SubCategory = subCategory
		defs[i].Index = i + 1
		if defs[i].Type == "" {
			defs[i].Type = PropertyTypeString
		}
	}
	return defs
}
