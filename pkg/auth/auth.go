// Package auth provides the authentication strategies served under /auth.
//
// Every strategy reduces a request.Descriptor to a Verdict. A failed attempt
// is reported as an *errors.Error whose type selects the response status;
// strategies that implement Challenger also supply the WWW-Authenticate
// value to send with that failure. Malformed credentials are treated the
// same as absent ones.
package auth

import (
	"strings"

	"github.com/WhileEndless/go-httpbin/pkg/request"
)

// Scheme names an authentication scheme as reported in verdicts
type Scheme string

const (
	SchemeBasic       Scheme = "basic"
	SchemeHiddenBasic Scheme = "hidden-basic"
	SchemeBearer      Scheme = "bearer"
	SchemeDigest      Scheme = "digest"
)

// Realm is advertised by the Basic and Digest challenges
const Realm = "HTTPBin"

// Verdict is the outcome of a successful authentication attempt
type Verdict struct {
	Authenticated bool
	Principal     string
	// Credential is the presented token. Only Bearer fills it in.
	Credential string
	Scheme     Scheme
}

// Strategy authenticates one request under a single scheme
type Strategy interface {
	Scheme() Scheme
	Authenticate(d *request.Descriptor) (*Verdict, error)
}

// Challenger is implemented by strategies whose failures carry a
// WWW-Authenticate header. Each call may return a fresh challenge.
type Challenger interface {
	Challenge() (string, error)
}

// splitAuthorization separates "<scheme> <credentials>". The scheme is
// matched case-insensitively; credentials are returned untrimmed.
func splitAuthorization(header, scheme string) (string, bool) {
	if len(header) <= len(scheme) || header[len(scheme)] != ' ' {
		return "", false
	}
	if !strings.EqualFold(header[:len(scheme)], scheme) {
		return "", false
	}
	return header[len(scheme)+1:], true
}
