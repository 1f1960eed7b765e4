package route

import "testing"

func TestDecide(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		token  string
		action Action
		target string
	}{
		{"login without credential allowed", Login, "", Allow, ""},
		{"register without credential allowed", Register, "", Allow, ""},
		{"login with credential redirects home", Login, "tok", Redirect, Home},
		{"register with credential redirects home", Register, "tok", Redirect, Home},
		{"home without credential redirects to login", Home, "", Redirect, Login},
		{"home with credential allowed", Home, "tok", Allow, ""},
		{"dashboard without credential redirects to login", "/dashboard", "", Redirect, Login},
		{"dashboard sub-path without credential redirects", "/dashboard/reports", "", Redirect, Login},
		{"app prefix with credential allowed", "/app/settings", "tok", Allow, ""},
		{"unmatched path allowed either way", "/about", "", Allow, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.path, tt.token)
			if d.Action != tt.action {
				t.Errorf("Decide(%q, %q).Action = %v, want %v", tt.path, tt.token, d.Action, tt.action)
			}
			if d.Target != tt.target {
				t.Errorf("Decide(%q, %q).Target = %q, want %q", tt.path, tt.token, d.Target, tt.target)
			}
		})
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{Login, true},
		{Register, true},
		{Home, true},
		{"/dashboard", true},
		{"/dashboard/reports", true},
		{"/app", true},
		{"/app/settings/profile", true},
		{"/application", false}, // prefix match is path-segment aware
		{"/about", false},
	}

	for _, tt := range tests {
		if got := Matches(tt.path); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
