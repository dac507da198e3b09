package digest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/WhileEndless/go-httpbin/pkg/errors"
)

// clientAuthorization builds the header a conforming client would send
func clientAuthorization(c *Challenge, algorithm Algorithm, user, pass, method, uri string) string {
	nc, cnonce := "00000001", "0a4f113b"
	resp := Expected(algorithm, user, c.Realm, pass, method, uri, c.Nonce, nc, cnonce, c.QOP)
	return fmt.Sprintf(`Digest username="%s", realm="%s", nonce="%s", uri="%s", algorithm=%s, qop=%s, nc=%s, cnonce="%s", response="%s", opaque="%s"`,
		user, c.Realm, c.Nonce, uri, algorithm, c.QOP, nc, cnonce, resp, c.Opaque)
}

func TestNewChallenge_Format(t *testing.T) {
	c, err := NewChallenge("", "auth", MD5)
	if err != nil {
		t.Fatalf("NewChallenge() error = %v", err)
	}

	if c.Realm != DefaultRealm {
		t.Errorf("Realm = %q, want %q", c.Realm, DefaultRealm)
	}
	if len(c.Nonce) != 32 || len(c.Opaque) != 32 {
		t.Errorf("nonce/opaque length = %d/%d, want 32", len(c.Nonce), len(c.Opaque))
	}

	want := fmt.Sprintf(`Digest realm="HTTPBin", qop="auth", nonce="%s", opaque="%s", algorithm=MD5`, c.Nonce, c.Opaque)
	if got := c.Header(); got != want {
		t.Errorf("Header() = %q, want %q", got, want)
	}
}

func TestNewChallenge_FreshNonce(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		c, err := NewChallenge(DefaultRealm, "auth", MD5)
		if err != nil {
			t.Fatalf("NewChallenge() error = %v", err)
		}
		if seen[c.Nonce] {
			t.Fatalf("nonce %s issued twice", c.Nonce)
		}
		seen[c.Nonce] = true
	}
}

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		in   string
		want Algorithm
	}{
		{"", MD5},
		{"MD5", MD5},
		{"sha-256", SHA256},
		{"SHA-256", SHA256},
		{"SHA-512", MD5},
	}
	for _, tt := range tests {
		if got := ParseAlgorithm(tt.in); got != tt.want {
			t.Errorf("ParseAlgorithm(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestExpected_RFC2617Example(t *testing.T) {
	// Worked example from RFC 2617 section 3.5
	got := Expected(MD5, "Mufasa", "testrealm@host.com", "Circle Of Life",
		"GET", "/dir/index.html", "dcd98b7102dd2f0e8b11d0f600bfb0c093",
		"00000001", "0a4f113b", "auth")
	if got != "6629fae49393a05397450978507c4ef1" {
		t.Errorf("Expected() = %s", got)
	}
}

// ============================================================================
// Credential Parsing Tests
// ============================================================================

func TestParseCredentials(t *testing.T) {
	creds, err := ParseCredentials(`Digest username="alice", realm="HTTPBin", uri="/a,b?x=1", qop=auth, nc=00000001, response="abc"`)
	if err != nil {
		t.Fatalf("ParseCredentials() error = %v", err)
	}

	want := map[string]string{
		"username": "alice",
		"realm":    "HTTPBin",
		"uri":      "/a,b?x=1",
		"qop":      "auth",
		"nc":       "00000001",
		"response": "abc",
	}
	for k, v := range want {
		if creds.Get(k) != v {
			t.Errorf("%s = %q, want %q", k, creds.Get(k), v)
		}
	}
}

func TestParseCredentials_Escapes(t *testing.T) {
	creds, err := ParseCredentials(`digest username="a\"b", realm="r"`)
	if err != nil {
		t.Fatalf("ParseCredentials() error = %v", err)
	}
	if creds.Get("username") != `a"b` {
		t.Errorf("username = %q", creds.Get("username"))
	}
}

func TestParseCredentials_Malformed(t *testing.T) {
	inputs := []string{
		"",
		"Basic YWxpY2U6cGFzcw==",
		"Digest",
		`Digest username="unterminated`,
		"Digest =value",
		`Digest username="a" realm="b"`,
	}
	for _, in := range inputs {
		_, err := ParseCredentials(in)
		if !errors.Is(err, errors.ErrorTypeMalformedCredentials) {
			t.Errorf("ParseCredentials(%q) error = %v, want MalformedCredentials", in, err)
		}
	}
}

// ============================================================================
// Verification Tests
// ============================================================================

func TestVerify_ClientFlow(t *testing.T) {
	for _, algorithm := range []Algorithm{MD5, SHA256} {
		t.Run(string(algorithm), func(t *testing.T) {
			c, err := NewChallenge(DefaultRealm, "auth", algorithm)
			if err != nil {
				t.Fatalf("NewChallenge() error = %v", err)
			}
			uri := "/digest-auth/auth/user/passwd"
			header := clientAuthorization(c, algorithm, "user", "passwd", "GET", uri)

			creds, err := ParseCredentials(header)
			if err != nil {
				t.Fatalf("ParseCredentials() error = %v", err)
			}
			if err := Verify(creds, "user", "passwd", "GET", uri); err != nil {
				t.Errorf("Verify() error = %v", err)
			}
			if err := Verify(creds, "user", "wrong", "GET", uri); !errors.Is(err, errors.ErrorTypeInvalidCredentials) {
				t.Errorf("Verify(wrong password) error = %v", err)
			}
			if err := Verify(creds, "user", "passwd", "POST", uri); err == nil {
				t.Error("Verify() accepted a different method")
			}
		})
	}
}

func TestVerify_WithoutQOP(t *testing.T) {
	nonce := "00112233445566778899aabbccddeeff"
	resp := Expected(MD5, "user", DefaultRealm, "passwd", "GET", "/x", nonce, "", "", "")
	creds := Credentials{"username": "user", "nonce": nonce, "uri": "/x", "response": resp}

	if err := Verify(creds, "user", "passwd", "GET", "/x"); err != nil {
		t.Errorf("Verify() error = %v", err)
	}
}

func TestVerify_TamperedResponse(t *testing.T) {
	c, _ := NewChallenge(DefaultRealm, "auth", MD5)
	header := clientAuthorization(c, MD5, "user", "passwd", "GET", "/p")
	creds, _ := ParseCredentials(header)

	resp := creds["response"]
	last := resp[len(resp)-1]
	if last == '0' {
		last = '1'
	} else {
		last = '0'
	}
	creds["response"] = resp[:len(resp)-1] + string(last)

	if err := Verify(creds, "user", "passwd", "GET", "/p"); !errors.Is(err, errors.ErrorTypeInvalidCredentials) {
		t.Errorf("Verify(tampered) error = %v", err)
	}
}

func TestVerify_MissingFields(t *testing.T) {
	tests := []Credentials{
		{"response": "abc"},
		{"nonce": "abc"},
	}
	for _, creds := range tests {
		if err := Verify(creds, "u", "p", "GET", "/"); !errors.Is(err, errors.ErrorTypeMalformedCredentials) {
			t.Errorf("Verify(%v) error = %v", creds, err)
		}
	}
}

func TestChallenge_StringWithoutQOP(t *testing.T) {
	c := &Challenge{Realm: "r", Nonce: "n", Opaque: "o"}
	if got := c.String(); strings.Contains(got, "qop") || strings.Contains(got, "algorithm") {
		t.Errorf("String() = %q", got)
	}
}
