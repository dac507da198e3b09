package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"github.com/WhileEndless/go-httpbin/pkg/errors"
	"github.com/WhileEndless/go-httpbin/pkg/request"
)

// ParseBasic extracts the username and password from a Basic
// Authorization header value. The decoded payload is split on the first ':'.
func ParseBasic(header string) (username, password string, err error) {
	encoded, ok := splitAuthorization(header, "Basic")
	if !ok {
		return "", "", errors.NewError(errors.ErrorTypeMalformedCredentials,
			"basic credentials required", "authorization")
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", "", errors.Wrap(errors.ErrorTypeMalformedCredentials,
			"invalid basic credentials encoding", "authorization", err)
	}

	username, password, found := strings.Cut(string(decoded), ":")
	if !found {
		return "", "", errors.NewError(errors.ErrorTypeMalformedCredentials,
			"basic credentials missing ':' separator", "authorization")
	}
	return username, password, nil
}

// Basic authenticates against a fixed username and password
type Basic struct {
	Username string
	Password string
}

func (b *Basic) Scheme() Scheme { return SchemeBasic }

func (b *Basic) Authenticate(d *request.Descriptor) (*Verdict, error) {
	username, password, err := ParseBasic(d.Header("Authorization"))
	if err != nil {
		return nil, err
	}
	if !equal(username, b.Username) || !equal(password, b.Password) {
		return nil, errors.NewError(errors.ErrorTypeInvalidCredentials,
			"basic credentials do not match", "authorization")
	}
	return &Verdict{Authenticated: true, Principal: b.Username, Scheme: SchemeBasic}, nil
}

func (b *Basic) Challenge() (string, error) {
	return `Basic realm="` + Realm + `"`, nil
}

// HiddenBasic behaves like Basic but reports every failure as not found
// and never advertises a challenge.
type HiddenBasic struct {
	Username string
	Password string
}

func (h *HiddenBasic) Scheme() Scheme { return SchemeHiddenBasic }

func (h *HiddenBasic) Authenticate(d *request.Descriptor) (*Verdict, error) {
	basic := Basic{Username: h.Username, Password: h.Password}
	verdict, err := basic.Authenticate(d)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeNotFound, "Not Found", "authorization", err)
	}
	verdict.Scheme = SchemeHiddenBasic
	return verdict, nil
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
