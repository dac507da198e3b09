package httpbin

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"github.com/WhileEndless/go-httpbin/pkg/auth"
	"github.com/WhileEndless/go-httpbin/pkg/digest"
	"github.com/WhileEndless/go-httpbin/pkg/errors"
)

type verdictResponse struct {
	Authenticated bool              `json:"authenticated"`
	User          string            `json:"user"`
	Token         *string           `json:"token"`
	Method        string            `json:"method"`
	Headers       map[string]string `json:"headers"`
	URL           string            `json:"url"`
}

type tokenDetails struct {
	Length     int               `json:"length"`
	Source     string            `json:"source"`
	AuthMethod string            `json:"auth_method"`
	Headers    map[string]string `json:"headers"`
}

type tokenResponse struct {
	Valid   bool         `json:"valid"`
	Token   string       `json:"token"`
	Method  string       `json:"method"`
	Details tokenDetails `json:"details"`
}

// BasicAuth requires Basic credentials matching the path
func (h *HTTPBin) BasicAuth(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.authenticate(w, r, ps, &auth.Basic{
		Username: ps.ByName("user"),
		Password: ps.ByName("pass"),
	})
}

// HiddenBasicAuth is BasicAuth answering 404 instead of 401
func (h *HTTPBin) HiddenBasicAuth(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.authenticate(w, r, ps, &auth.HiddenBasic{
		Username: ps.ByName("user"),
		Password: ps.ByName("pass"),
	})
}

// BearerAuth accepts any bearer token
func (h *HTTPBin) BearerAuth(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.authenticate(w, r, ps, auth.Bearer{})
}

// DigestAuth runs the Digest challenge-response flow.
//
//	/auth/digest-auth/{qop}/{user}/{pass}[/{algo}[/{staleAfter}]]
//
// staleAfter is accepted and ignored.
func (h *HTTPBin) DigestAuth(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.authenticate(w, r, ps, &auth.Digest{
		QOP:       ps.ByName("qop"),
		Username:  ps.ByName("user"),
		Password:  ps.ByName("pass"),
		Algorithm: digest.ParseAlgorithm(ps.ByName("algo")),
	})
}

func (h *HTTPBin) authenticate(w http.ResponseWriter, r *http.Request, ps httprouter.Params, strategy auth.Strategy) {
	d, ok := h.describe(w, r, ps)
	if !ok {
		return
	}

	verdict, err := strategy.Authenticate(d)
	if err != nil {
		h.logger.Debug("authentication failed",
			zap.String("scheme", string(strategy.Scheme())),
			zap.String("reason", err.Error()),
		)
		h.deny(w, strategy, err)
		return
	}

	resp := verdictResponse{
		Authenticated: verdict.Authenticated,
		User:          verdict.Principal,
		Method:        string(verdict.Scheme),
		Headers:       d.Headers(),
		URL:           d.URL(),
	}
	if verdict.Credential != "" {
		resp.Token = &verdict.Credential
	}
	writeJSON(w, http.StatusOK, resp)
}

// deny answers a failed attempt, attaching a challenge when the scheme has one
func (h *HTTPBin) deny(w http.ResponseWriter, strategy auth.Strategy, cause error) {
	if c, ok := strategy.(auth.Challenger); ok {
		challenge, err := c.Challenge()
		if err != nil {
			h.writeError(w, err)
			return
		}
		w.Header().Set("WWW-Authenticate", challenge)
	}
	writeJSON(w, errors.StatusCode(cause), errorBody{Error: errors.Message(cause)})
}

// ValidateToken reports on a presented token
func (h *HTTPBin) ValidateToken(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	d, ok := h.describe(w, r, ps)
	if !ok {
		return
	}

	report, err := auth.ValidateToken(d)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		Valid:  report.Valid,
		Token:  report.Token,
		Method: report.Method,
		Details: tokenDetails{
			Length:     report.Length,
			Source:     report.Source,
			AuthMethod: report.Method,
			Headers:    d.Headers(),
		},
	})
}
