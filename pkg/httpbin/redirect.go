package httpbin

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"github.com/WhileEndless/go-httpbin/pkg/errors"
	"github.com/WhileEndless/go-httpbin/pkg/redirect"
)

type redirectResponse struct {
	Message        string            `json:"message"`
	FinalURL       string            `json:"final_url"`
	TotalRedirects int               `json:"total_redirects"`
	Headers        map[string]string `json:"headers"`
	Origin         string            `json:"origin"`
}

type statusResponse struct {
	Message     string            `json:"message,omitempty"`
	Code        int               `json:"code"`
	Description string            `json:"description"`
	Headers     map[string]string `json:"headers"`
	URL         string            `json:"url"`
	Origin      string            `json:"origin"`
}

// Redirect walks a chain of n redirects carried in the count parameter
func (h *HTTPBin) Redirect(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	d, ok := h.describe(w, r, ps)
	if !ok {
		return
	}

	state, err := redirect.ParseState(d.PathParam("n"), d.Query(redirect.CountParam))
	if err != nil {
		h.writeError(w, err)
		return
	}

	if state.Terminal() {
		writeJSON(w, http.StatusOK, redirectResponse{
			Message:        fmt.Sprintf("Redirected %d times successfully", state.Target),
			FinalURL:       d.URL(),
			TotalRedirects: state.Target,
			Headers:        d.Headers(),
			Origin:         d.RemoteAddress(),
		})
		return
	}

	location, err := state.Location(d.URL())
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Location", location)
	w.WriteHeader(h.opts.RedirectStatus)
}

// RedirectTo sends a single redirect to an arbitrary URL
func (h *HTTPBin) RedirectTo(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	d, ok := h.describe(w, r, ps)
	if !ok {
		return
	}

	target, err := redirect.ParseTarget(d.Query("url"), d.Query("status_code"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	// set directly: http.Redirect would rewrite relative targets
	w.Header().Set("Location", target.URL)
	w.WriteHeader(target.Status)
}

// Status answers with the requested status code
func (h *HTTPBin) Status(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	d, ok := h.describe(w, r, ps)
	if !ok {
		return
	}

	raw := d.PathParam("code")
	code, err := strconv.Atoi(raw)
	if err != nil {
		h.writeError(w, errors.InvalidParameter("status code", raw, err))
		return
	}
	if code < 100 || code > 599 {
		h.writeError(w, errors.OutOfRange("code", "Invalid status code. Must be between 100-599."))
		return
	}

	if !bodyAllowed(code) {
		w.WriteHeader(code)
		return
	}
	writeJSON(w, code, statusResponse{
		Code:        code,
		Description: statusDescription(code),
		Headers:     d.Headers(),
		URL:         d.URL(),
		Origin:      d.RemoteAddress(),
	})
}

// Deny always answers 403
func (h *HTTPBin) Deny(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	d, ok := h.describe(w, r, ps)
	if !ok {
		return
	}
	writeJSON(w, http.StatusForbidden, statusResponse{
		Message:     "Access Denied",
		Code:        http.StatusForbidden,
		Description: statusDescription(http.StatusForbidden),
		Headers:     d.Headers(),
		URL:         d.URL(),
		Origin:      d.RemoteAddress(),
	})
}

func bodyAllowed(code int) bool {
	switch {
	case code >= 100 && code < 200:
		return false
	case code == http.StatusNoContent, code == http.StatusNotModified:
		return false
	}
	return true
}
