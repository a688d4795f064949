package auth

import "testing"

// TestBearerToken проверяет разбор заголовка Authorization.
func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer abc.def.ghi", "abc.def.ghi", true},
		{"Bearer ", "", false},
		{"Basic dXNlcg==", "", false},
		{"abc.def.ghi", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		token, ok := bearerToken(tc.header)
		if ok != tc.ok || token != tc.token {
			t.Fatalf("bearerToken(%q) = %q, %v", tc.header, token, ok)
		}
	}
}
