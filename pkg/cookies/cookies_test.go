package cookies

import (
	"strings"
	"testing"
)

// ============================================================================
// Request Cookie Tests
// ============================================================================

func TestParseCookies_Simple(t *testing.T) {
	cookies := ParseCookies("session=abc123; user=john")

	if len(cookies) != 2 {
		t.Fatalf("Expected 2 cookies, got %d", len(cookies))
	}
	if cookies[0].Name != "session" || cookies[0].Value != "abc123" {
		t.Errorf("Expected session=abc123, got %s=%s", cookies[0].Name, cookies[0].Value)
	}
	if cookies[1].Name != "user" || cookies[1].Value != "john" {
		t.Errorf("Expected user=john, got %s=%s", cookies[1].Name, cookies[1].Value)
	}
}

func TestParseCookies_WithQuotesAndSpaces(t *testing.T) {
	cookies := ParseCookies(`  session = "abc123" ;  user="john doe"; `)

	if len(cookies) != 2 {
		t.Fatalf("Expected 2 cookies, got %d", len(cookies))
	}
	if cookies[0].Name != "session" || cookies[0].Value != "abc123" {
		t.Errorf("got %s=%s", cookies[0].Name, cookies[0].Value)
	}
	if cookies[1].Value != "john doe" {
		t.Errorf("Expected value 'john doe', got %s", cookies[1].Value)
	}
}

func TestParseCookies_EmptyAndMalformed(t *testing.T) {
	if got := ParseCookies(""); len(got) != 0 {
		t.Errorf("Expected empty slice, got %d cookies", len(got))
	}

	cookies := ParseCookies("flag; a=1")
	if len(cookies) != 2 || cookies[0].Name != "flag" || cookies[0].Value != "" {
		t.Errorf("unexpected parse of bare name: %+v", cookies)
	}
}

func TestToMap_LastDuplicateWins(t *testing.T) {
	m := ToMap(ParseCookies("a=1; b=2; a=3"))

	if m["a"] != "3" || m["b"] != "2" {
		t.Errorf("ToMap = %v", m)
	}
}

func TestResponseCookie_Build(t *testing.T) {
	cookie := ResponseCookie{Name: "session", Value: "xyz", Path: "/", HttpOnly: true}

	if got := cookie.Build(); got != "session=xyz; Path=/; HttpOnly" {
		t.Errorf("Build = %q", got)
	}
}

func TestNewDeletionCookie(t *testing.T) {
	cookie := NewDeletionCookie("session")
	built := cookie.Build()

	if !strings.HasPrefix(built, "session=;") {
		t.Errorf("Build = %q, want empty value", built)
	}
	if !strings.Contains(built, "Max-Age=0") || !strings.Contains(built, "Expires="+ExpiredDate) {
		t.Errorf("Build = %q, want expiry attributes", built)
	}
}
