// Package digest implements the server side of HTTP Digest authentication
// (RFC 2617 / RFC 7616) with MD5 and SHA-256. Challenges are stateless:
// every issuance carries a fresh random nonce and opaque and nothing is
// remembered between requests, so nonce reuse is not detected.
package digest

import (
	"crypto/md5"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"

	"github.com/WhileEndless/go-httpbin/pkg/errors"
)

// Algorithm is a Digest hash algorithm
type Algorithm string

const (
	MD5    Algorithm = "MD5"
	SHA256 Algorithm = "SHA-256"
)

// DefaultRealm is the realm advertised by every challenge
const DefaultRealm = "HTTPBin"

// ParseAlgorithm maps an algorithm name to a supported Algorithm.
// Anything other than SHA-256 (case-insensitive) falls back to MD5.
func ParseAlgorithm(name string) Algorithm {
	if strings.EqualFold(strings.TrimSpace(name), string(SHA256)) {
		return SHA256
	}
	return MD5
}

func (a Algorithm) newHash() hash.Hash {
	if a == SHA256 {
		return sha256.New()
	}
	return md5.New()
}

// Sum returns the lowercase hex digest of data under a
func (a Algorithm) Sum(data string) string {
	h := a.newHash()
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// Challenge is one outstanding Digest negotiation
type Challenge struct {
	Realm     string
	QOP       string
	Nonce     string
	Opaque    string
	Algorithm Algorithm
}

// NewChallenge issues a challenge with a fresh 128-bit nonce and opaque
func NewChallenge(realm, qop string, algorithm Algorithm) (*Challenge, error) {
	nonce, err := randomHex(16)
	if err != nil {
		return nil, err
	}
	opaque, err := randomHex(16)
	if err != nil {
		return nil, err
	}
	if realm == "" {
		realm = DefaultRealm
	}
	return &Challenge{
		Realm:     realm,
		QOP:       qop,
		Nonce:     nonce,
		Opaque:    opaque,
		Algorithm: algorithm,
	}, nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("digest: read random: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// String serializes the challenge as the value following "Digest " in a
// WWW-Authenticate header. algorithm is a token and stays unquoted.
func (c *Challenge) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, `realm="%s"`, c.Realm)
	if c.QOP != "" {
		fmt.Fprintf(&b, `, qop="%s"`, c.QOP)
	}
	fmt.Fprintf(&b, `, nonce="%s", opaque="%s"`, c.Nonce, c.Opaque)
	if c.Algorithm != "" {
		fmt.Fprintf(&b, ", algorithm=%s", c.Algorithm)
	}
	return b.String()
}

// Header returns the full WWW-Authenticate header value
func (c *Challenge) Header() string {
	return "Digest " + c.String()
}

// Credentials are the fields of a Digest Authorization header
type Credentials map[string]string

// Get returns a field value
func (c Credentials) Get(key string) string {
	return c[key]
}

// ParseCredentials parses an Authorization header of the form
// `Digest k1="v1", k2=v2, ...`. Quoted values may contain commas and
// backslash escapes. Field names are lowercased.
func ParseCredentials(header string) (Credentials, error) {
	scheme, rest, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Digest") {
		return nil, errors.NewError(errors.ErrorTypeMalformedCredentials,
			"authorization header is not Digest", "digest")
	}

	creds := Credentials{}
	s := strings.TrimSpace(rest)
	for len(s) > 0 {
		eq := strings.IndexByte(s, '=')
		if eq <= 0 {
			return nil, errors.NewError(errors.ErrorTypeMalformedCredentials,
				"malformed digest field", "digest")
		}
		key := strings.ToLower(strings.TrimSpace(s[:eq]))
		s = strings.TrimLeft(s[eq+1:], " \t")

		var value string
		if strings.HasPrefix(s, `"`) {
			v, remaining, ok := readQuoted(s[1:])
			if !ok {
				return nil, errors.NewError(errors.ErrorTypeMalformedCredentials,
					"unterminated quoted value for "+key, "digest")
			}
			value, s = v, remaining
		} else {
			end := strings.IndexByte(s, ',')
			if end < 0 {
				end = len(s)
			}
			value, s = strings.TrimSpace(s[:end]), s[end:]
		}

		if key == "" {
			return nil, errors.NewError(errors.ErrorTypeMalformedCredentials,
				"empty digest field name", "digest")
		}
		creds[key] = value

		s = strings.TrimLeft(s, " \t")
		if s == "" {
			break
		}
		if s[0] != ',' {
			return nil, errors.NewError(errors.ErrorTypeMalformedCredentials,
				"expected ',' after "+key, "digest")
		}
		s = strings.TrimLeft(s[1:], " \t")
	}

	if len(creds) == 0 {
		return nil, errors.NewError(errors.ErrorTypeMalformedCredentials,
			"empty digest credentials", "digest")
	}
	return creds, nil
}

// readQuoted reads a quoted-string body (opening quote already consumed)
func readQuoted(s string) (value, rest string, ok bool) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+1 < len(s) {
				i++
				b.WriteByte(s[i])
			}
		case '"':
			return b.String(), s[i+1:], true
		default:
			b.WriteByte(s[i])
		}
	}
	return "", "", false
}

// Expected computes the response value a client must send:
//
//	HA1 = H(username:realm:password)
//	HA2 = H(method:uri)
//	response = H(HA1:nonce:nc:cnonce:qop:HA2)   when qop is present
//	response = H(HA1:nonce:HA2)                 otherwise
func Expected(algorithm Algorithm, username, realm, password, method, uri, nonce, nc, cnonce, qop string) string {
	ha1 := algorithm.Sum(username + ":" + realm + ":" + password)
	ha2 := algorithm.Sum(method + ":" + uri)
	if qop != "" {
		return algorithm.Sum(ha1 + ":" + nonce + ":" + nc + ":" + cnonce + ":" + qop + ":" + ha2)
	}
	return algorithm.Sum(ha1 + ":" + nonce + ":" + ha2)
}

// Verify checks creds against the expected username and password.
// realm defaults to DefaultRealm when the client omits it; the hash follows
// the client's algorithm field. uri must be the request target as sent.
func Verify(creds Credentials, username, password, method, uri string) error {
	nonce, response := creds.Get("nonce"), creds.Get("response")
	if nonce == "" || response == "" {
		return errors.NewError(errors.ErrorTypeMalformedCredentials,
			"digest credentials missing nonce or response", "digest")
	}

	realm := creds.Get("realm")
	if realm == "" {
		realm = DefaultRealm
	}

	expected := Expected(ParseAlgorithm(creds.Get("algorithm")),
		username, realm, password, method, uri,
		nonce, creds.Get("nc"), creds.Get("cnonce"), creds.Get("qop"))

	if response != expected {
		return errors.NewError(errors.ErrorTypeInvalidCredentials,
			"digest response mismatch", "digest")
	}
	return nil
}
