package settings

import (
	"errors"
	"reflect"
	"testing"
)

func enabledStore() *MapStore {
	return NewMapStore(map[string]string{
		KeyEnabled:      "true",
		KeyClientID:     "id",
		KeyClientSecret: "secret",
	})
}

func TestSettings_IsEnabled(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]string
		want   bool
	}{
		{
			name:   "enabled with id and secret",
			values: map[string]string{KeyEnabled: "true", KeyClientID: "id", KeyClientSecret: "secret"},
			want:   true,
		},
		{
			name:   "flag false",
			values: map[string]string{KeyEnabled: "false", KeyClientID: "id", KeyClientSecret: "secret"},
			want:   false,
		},
		{
			name:   "flag unset defaults to false",
			values: map[string]string{KeyClientID: "id", KeyClientSecret: "secret"},
			want:   false,
		},
		{
			name:   "missing client id",
			values: map[string]string{KeyEnabled: "true", KeyClientSecret: "secret"},
			want:   false,
		},
		{
			name:   "empty client id",
			values: map[string]string{KeyEnabled: "true", KeyClientID: "", KeyClientSecret: "secret"},
			want:   false,
		},
		{
			name:   "missing client secret",
			values: map[string]string{KeyEnabled: "true", KeyClientID: "id"},
			want:   false,
		},
		{
			name:   "blank client secret",
			values: map[string]string{KeyEnabled: "true", KeyClientID: "id", KeyClientSecret: "   "},
			want:   false,
		},
		{
			name:   "unparseable flag",
			values: map[string]string{KeyEnabled: "yes please", KeyClientID: "id", KeyClientSecret: "secret"},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(NewMapStore(tt.values))
			if got := s.IsEnabled(); got != tt.want {
				t.Errorf("IsEnabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSettings_IsEnabled_ReadsStoreOnEveryCall(t *testing.T) {
	store := enabledStore()
	s := New(store)

	if !s.IsEnabled() {
		t.Fatal("IsEnabled() = false, want true")
	}

	store.Set(KeyClientSecret, "")
	if s.IsEnabled() {
		t.Error("IsEnabled() = true after secret was cleared, want false")
	}

	store.Set(KeyClientSecret, "new-secret")
	if !s.IsEnabled() {
		t.Error("IsEnabled() = false after secret was restored, want true")
	}
}

func TestSettings_Credentials(t *testing.T) {
	s := New(enabledStore())

	if got := s.ClientID(); got != "id" {
		t.Errorf("ClientID() = %q, want %q", got, "id")
	}
	if got := s.ClientSecret(); got != "secret" {
		t.Errorf("ClientSecret() = %q, want %q", got, "secret")
	}

	empty := New(NewMapStore(nil))
	if got := empty.ClientID(); got != "" {
		t.Errorf("ClientID() on empty store = %q, want empty", got)
	}
}

func TestSettings_AllowUsersToSignUp(t *testing.T) {
	store := NewMapStore(nil)
	s := New(store)

	if !s.AllowUsersToSignUp() {
		t.Error("AllowUsersToSignUp() default = false, want true")
	}

	store.Set(KeyAllowUsersToSignUp, "false")
	if s.AllowUsersToSignUp() {
		t.Error("AllowUsersToSignUp() = true, want false")
	}

	store.Set(KeyAllowUsersToSignUp, "true")
	if !s.AllowUsersToSignUp() {
		t.Error("AllowUsersToSignUp() = false, want true")
	}
}

func TestSettings_SyncGroups(t *testing.T) {
	store := NewMapStore(nil)
	s := New(store)

	if s.SyncGroups() {
		t.Error("SyncGroups() default = true, want false")
	}

	store.Set(KeyGroupsSync, "true")
	if !s.SyncGroups() {
		t.Error("SyncGroups() = false, want true")
	}
}

func TestSettings_URLs(t *testing.T) {
	tests := []struct {
		name    string
		value   *string
		wantAPI string
		wantWeb string
	}{
		{
			name:    "defaults",
			value:   nil,
			wantAPI: "https://api.github.com/",
			wantWeb: "https://github.com/",
		},
		{
			name:    "without trailing slash",
			value:   strPtr("https://github.com"),
			wantAPI: "https://github.com/",
			wantWeb: "https://github.com/",
		},
		{
			name:    "with trailing slash",
			value:   strPtr("https://github.com/"),
			wantAPI: "https://github.com/",
			wantWeb: "https://github.com/",
		},
		{
			name:    "enterprise",
			value:   strPtr("https://github.company.com/api/v3"),
			wantAPI: "https://github.company.com/api/v3/",
			wantWeb: "https://github.company.com/api/v3/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMapStore(nil)
			if tt.value != nil {
				store.Set(KeyAPIURL, *tt.value)
				store.Set(KeyWebURL, *tt.value)
			}
			s := New(store)

			if got := s.APIURL(); got != tt.wantAPI {
				t.Errorf("APIURL() = %q, want %q", got, tt.wantAPI)
			}
			if got := s.WebURL(); got != tt.wantWeb {
				t.Errorf("WebURL() = %q, want %q", got, tt.wantWeb)
			}
		})
	}
}

func TestSettings_Organizations(t *testing.T) {
	tests := []struct {
		name  string
		value *string
		want  []string
	}{
		{name: "unset", value: nil, want: []string{}},
		{name: "single", value: strPtr("example"), want: []string{"example"}},
		{name: "multiple keeps order", value: strPtr("example0,example1"), want: []string{"example0", "example1"}},
		{name: "trimmed", value: strPtr(" example0 , example1"), want: []string{"example0", "example1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMapStore(nil)
			if tt.value != nil {
				store.Set(KeyOrganizations, *tt.value)
			}
			got := New(store).Organizations()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Organizations() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestSettings_LoginStrategy(t *testing.T) {
	store := NewMapStore(nil)
	s := New(store)

	if got := s.LoginStrategy(); got != string(LoginStrategyUnique) {
		t.Errorf("LoginStrategy() default = %q, want %q", got, LoginStrategyUnique)
	}

	store.Set(KeyLoginStrategy, string(LoginStrategyProviderLogin))
	if got := s.LoginStrategy(); got != string(LoginStrategyProviderLogin) {
		t.Errorf("LoginStrategy() = %q, want %q", got, LoginStrategyProviderLogin)
	}
}

func TestParseLoginStrategy(t *testing.T) {
	tests := []struct {
		value   string
		want    LoginStrategy
		wantErr bool
	}{
		{value: "Unique", want: LoginStrategyUnique},
		{value: "Same as GitHub login", want: LoginStrategyProviderLogin},
		{value: "unique", wantErr: true},
		{value: "", wantErr: true},
		{value: "Email", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := ParseLoginStrategy(tt.value)
			if tt.wantErr {
				var unsupported *UnsupportedStrategyError
				if !errors.As(err, &unsupported) {
					t.Fatalf("ParseLoginStrategy(%q) error = %v, want UnsupportedStrategyError", tt.value, err)
				}
				if unsupported.Value != tt.value {
					t.Errorf("UnsupportedStrategyError.Value = %q, want %q", unsupported.Value, tt.value)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLoginStrategy(%q) unexpected error: %v", tt.value, err)
			}
			if got != tt.want {
				t.Errorf("ParseLoginStrategy(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestDefinitions(t *testing.T) {
	defs := Definitions()
	if len(defs) != 9 {
		t.Fatalf("Definitions() returned %d definitions, want 9", len(defs))
	}

	seen := make(map[string]bool)
	for i, def := range defs {
		if def.Index != i+1 {
			t.Errorf("definition %q has index %d, want %d", def.Key, def.Index, i+1)
		}
		if def.Category != "github" || def.SubCategory != "authentication" {
			t.Errorf("definition %q has category %q/%q", def.Key, def.Category, def.SubCategory)
		}
		if seen[def.Key] {
			t.Errorf("duplicate definition for %q", def.Key)
		}
		seen[def.Key] = true
	}

	var strategy Definition
	for _, def := range defs {
		if def.Key == KeyLoginStrategy {
			strategy = def
		}
	}
	if strategy.Type != PropertyTypeSingleSelectList {
		t.Errorf("login strategy type = %q, want %q", strategy.Type, PropertyTypeSingleSelectList)
	}
	if len(strategy.Options) != 2 {
		t.Errorf("login strategy options = %v, want 2 options", strategy.Options)
	}
}

func TestDefinitions_ReturnsCopy(t *testing.T) {
	first := Definitions()
	first[0].DefaultValue = "modified"

	if Definitions()[0].DefaultValue == "modified" {
		t.Error("Definitions() should return a fresh slice on every call")
	}
}

func TestMapStore_SetListAndDelete(t *testing.T) {
	store := NewMapStore(nil)
	store.SetList(KeyOrganizations, []string{"a", "b"})

	if got, _ := store.Get(KeyOrganizations); got != "a,b" {
		t.Errorf("Get() = %q, want %q", got, "a,b")
	}

	store.Delete(KeyOrganizations)
	if _, ok := store.Get(KeyOrganizations); ok {
		t.Error("Get() after Delete() reported key as present")
	}
}

func TestSettings_NilStore(t *testing.T) {
	s := New(nil)
	if s.IsEnabled() {
		t.Error("IsEnabled() with nil store = true, want false")
	}
	if got := s.APIURL(); got != DefaultAPIURL {
		t.Errorf("APIURL() with nil store = %q, want %q", got, DefaultAPIURL)
	}
}

func strPtr(s string) *string {
	return &s
}
