package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                       "/",
		"/metrics":               "/metrics",
		"/v1/auth/login":         "/v1/auth/login",
		"/v1/auth/login?debug=1": "/v1/auth/login",
		"/v1/me?fields=subject":  "/v1/me",
		"/v1/auth/register":      "/v1/auth/register",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
