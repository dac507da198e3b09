package auth

import (
	"github.com/WhileEndless/go-httpbin/pkg/errors"
	"github.com/WhileEndless/go-httpbin/pkg/request"
)

// BearerPrincipal is the identity reported for any presented bearer token
const BearerPrincipal = "bearer_user"

// Bearer accepts any non-empty bearer token. Tokens are not verified.
type Bearer struct{}

func (Bearer) Scheme() Scheme { return SchemeBearer }

func (Bearer) Authenticate(d *request.Descriptor) (*Verdict, error) {
	token, ok := splitAuthorization(d.Header("Authorization"), "Bearer")
	if !ok || token == "" {
		return nil, errors.NewError(errors.ErrorTypeMalformedCredentials,
			"Bearer token required", "authorization")
	}
	return &Verdict{
		Authenticated: true,
		Principal:     BearerPrincipal,
		Credential:    token,
		Scheme:        SchemeBearer,
	}, nil
}

func (Bearer) Challenge() (string, error) {
	return "Bearer", nil
}
