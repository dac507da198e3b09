package cookies

import (
	"strconv"
	"strings"
)

// ExpiredDate is the Expires value used to delete a cookie
const ExpiredDate = "Thu, 01 Jan 1970 00:00:00 GMT"

// Cookie represents a request cookie (from Cookie header)
type Cookie struct {
	Name  string
	Value string
}

// ParseCookies parses a Cookie header value
// Never fails - returns empty slice if malformed
// Format: "name1=value1; name2=value2; name3=value3"
func ParseCookies(cookieHeader string) []Cookie {
	cookies := []Cookie{}

	for _, part := range strings.Split(cookieHeader, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		name, value, found := strings.Cut(part, "=")
		if !found {
			// No equals sign, treat whole thing as name with empty value
			cookies = append(cookies, Cookie{Name: part})
			continue
		}

		cookies = append(cookies, Cookie{
			Name:  strings.TrimSpace(name),
			Value: unquote(strings.TrimSpace(value)),
		})
	}

	return cookies
}

// ToMap collapses cookies into a name/value map; later duplicates win
func ToMap(cookies []Cookie) map[string]string {
	m := make(map[string]string, len(cookies))
	for _, c := range cookies {
		if c.Name == "" {
			continue
		}
		m[c.Name] = c.Value
	}
	return m
}

// ResponseCookie represents a Set-Cookie header
type ResponseCookie struct {
	Name    string
	Value   string
	Path    string
	Domain  string
	Expires string
	// MaxAge=0 means no Max-Age attribute; MaxAge<0 means "Max-Age=0" (delete now)
	MaxAge   int
	Secure   bool
	HttpOnly bool
	SameSite string
}

// NewDeletionCookie returns a Set-Cookie that makes clients drop name
func NewDeletionCookie(name string) ResponseCookie {
	return ResponseCookie{
		Name:    name,
		Path:    "/",
		Expires: ExpiredDate,
		MaxAge:  -1,
	}
}

// Build renders the cookie as a Set-Cookie header value
func (c *ResponseCookie) Build() string {
	var parts []string

	if c.Name != "" {
		parts = append(parts, c.Name+"="+c.Value)
	}
	if c.Path != "" {
		parts = append(parts, "Path="+c.Path)
	}
	if c.Domain != "" {
		parts = append(parts, "Domain="+c.Domain)
	}
	if c.Expires != "" {
		parts = append(parts, "Expires="+c.Expires)
	}
	switch {
	case c.MaxAge > 0:
		parts = append(parts, "Max-Age="+strconv.Itoa(c.MaxAge))
	case c.MaxAge < 0:
		parts = append(parts, "Max-Age=0")
	}
	if c.Secure {
		parts = append(parts, "Secure")
	}
	if c.HttpOnly {
		parts = append(parts, "HttpOnly")
	}
	if c.SameSite != "" {
		parts = append(parts, "SameSite="+c.SameSite)
	}

	return strings.Join(parts, "; ")
}

func unquote(value string) string {
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		return value[1 : len(value)-1]
	}
	return value
}
