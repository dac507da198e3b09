package auth

import (
	"github.com/WhileEndless/go-httpbin/pkg/digest"
	"github.com/WhileEndless/go-httpbin/pkg/errors"
	"github.com/WhileEndless/go-httpbin/pkg/request"
)

// Digest authenticates with the Digest challenge-response protocol.
// Algorithm only affects the issued challenge; verification hashes with
// whatever algorithm the client declares.
type Digest struct {
	QOP       string
	Username  string
	Password  string
	Algorithm digest.Algorithm
}

func (g *Digest) Scheme() Scheme { return SchemeDigest }

func (g *Digest) Authenticate(d *request.Descriptor) (*Verdict, error) {
	header := d.Header("Authorization")
	if _, ok := splitAuthorization(header, "Digest"); !ok {
		return nil, errors.NewError(errors.ErrorTypeMalformedCredentials,
			"digest credentials required", "authorization")
	}

	creds, err := digest.ParseCredentials(header)
	if err != nil {
		return nil, err
	}
	if err := digest.Verify(creds, g.Username, g.Password, d.Method(), d.RequestURI()); err != nil {
		return nil, err
	}
	return &Verdict{Authenticated: true, Principal: g.Username, Scheme: SchemeDigest}, nil
}

// Challenge issues a fresh challenge on every call
func (g *Digest) Challenge() (string, error) {
	algorithm := g.Algorithm
	if algorithm == "" {
		algorithm = digest.MD5
	}
	c, err := digest.NewChallenge(Realm, g.QOP, algorithm)
	if err != nil {
		return "", err
	}
	return c.Header(), nil
}
