package github

import "testing"

func TestNextPageURL(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{name: "none", values: nil, want: ""},
		{
			name:   "next and last",
			values: []string{`<https://api.github.com/user/teams?page=2>; rel="next", <https://api.github.com/user/teams?page=5>; rel="last"`},
			want:   "https://api.github.com/user/teams?page=2",
		},
		{
			name:   "last page",
			values: []string{`<https://api.github.com/user/teams?page=1>; rel="first", <https://api.github.com/user/teams?page=4>; rel="prev"`},
			want:   "",
		},
		{
			name:   "next listed after last",
			values: []string{`<https://x/last>; rel="last", <https://x/next>; rel="next"`},
			want:   "https://x/next",
		},
		{
			name:   "multiple header values",
			values: []string{`<https://x/first>; rel="first"`, `<https://x/n>; rel=next`},
			want:   "https://x/n",
		},
		{
			name:   "space separated relations",
			values: []string{`<https://x/n>; rel="next last"`},
			want:   "https://x/n",
		},
		{name: "malformed", values: []string{`https://x/n; rel="next"`}, want: ""},
		{
			name:   "comma in target",
			values: []string{`<https://x/teams?page=2&fields=a,b>; rel="next", <https://x/teams?page=3&fields=a,b>; rel="last"`},
			want:   "https://x/teams?page=2&fields=a,b",
		},
		{
			name:   "comma and semicolon in earlier target",
			values: []string{`<https://x/p?q=a,b;c>; rel="prev", <https://x/n>; rel="next"`},
			want:   "https://x/n",
		},
		{
			name:   "extra parameters",
			values: []string{`<https://x/n>; title="more"; rel="next"`},
			want:   "https://x/n",
		},
		{name: "unterminated target", values: []string{`<https://x/n; rel="next"`}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nextPageURL(tt.values); got != tt.want {
				t.Errorf("nextPageURL() = %q, want %q", got, tt.want)
			}
		})
	}
}
