package httpbin

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"

	"github.com/WhileEndless/go-httpbin/pkg/compression"
	"github.com/WhileEndless/go-httpbin/pkg/cookies"
	"github.com/WhileEndless/go-httpbin/pkg/errors"
	"github.com/WhileEndless/go-httpbin/pkg/request"
	"github.com/WhileEndless/go-httpbin/pkg/version"
)

// Home greets the client
func (h *HTTPBin) Home(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to the API!",
		"version": version.Version,
	})
}

// Health reports liveness
func (h *HTTPBin) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// newEcho describes the request. withBody adds the decoded body fields.
func newEcho(d *request.Descriptor, withBody bool) (map[string]any, error) {
	echo := map[string]any{
		"args":    d.Args(),
		"headers": d.Headers(),
		"origin":  d.RemoteAddress(),
		"url":     d.URL(),
		"method":  d.Method(),
	}
	if !withBody {
		return echo, nil
	}

	form, err := d.Form()
	if err != nil {
		return nil, err
	}
	parsed, err := d.JSON()
	if err != nil {
		return nil, err
	}

	echo["data"] = string(d.Body())
	echo["form"] = form.Values
	echo["files"] = form.Files
	echo["json"] = parsed
	return echo, nil
}

// Echo reflects the request. Methods that may carry a body also report it.
func (h *HTTPBin) Echo(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	d, ok := h.describe(w, r, ps)
	if !ok {
		return
	}
	echo, err := newEcho(d, d.Method() != http.MethodGet || strings.HasPrefix(d.Path(), "/anything"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, echo)
}

// Headers returns the request headers
func (h *HTTPBin) Headers(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	d, ok := h.describe(w, r, ps)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"headers": d.Headers()})
}

// IP returns the client address
func (h *HTTPBin) IP(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	d, ok := h.describe(w, r, ps)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"origin": d.RemoteAddress()})
}

// UserAgent returns the User-Agent header
func (h *HTTPBin) UserAgent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	d, ok := h.describe(w, r, ps)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"user-agent": d.Header("User-Agent")})
}

// UUID returns a random v4 UUID
func (h *HTTPBin) UUID(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{"uuid": uuid.NewString()})
}

// ResponseHeaders sets every query parameter as a response header
func (h *HTTPBin) ResponseHeaders(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	d, ok := h.describe(w, r, ps)
	if !ok {
		return
	}
	for name, values := range d.QueryValues() {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"args": d.Args()})
}

// Cookies lists the cookies sent with the request
func (h *HTTPBin) Cookies(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	d, ok := h.describe(w, r, ps)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cookies": requestCookies(d)})
}

// SetCookies sets a cookie per query parameter
func (h *HTTPBin) SetCookies(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	d, ok := h.describe(w, r, ps)
	if !ok {
		return
	}
	set := d.Args()
	for name, value := range set {
		c := cookies.ResponseCookie{Name: name, Value: value, Path: "/"}
		w.Header().Add("Set-Cookie", c.Build())
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"cookies": requestCookies(d),
		"set":     set,
	})
}

// DeleteCookies expires a cookie per query parameter name
func (h *HTTPBin) DeleteCookies(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	d, ok := h.describe(w, r, ps)
	if !ok {
		return
	}
	deleted := make([]string, 0)
	for name := range d.QueryValues() {
		c := cookies.NewDeletionCookie(name)
		w.Header().Add("Set-Cookie", c.Build())
		deleted = append(deleted, name)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"cookies": requestCookies(d),
		"deleted": deleted,
	})
}

func requestCookies(d *request.Descriptor) map[string]string {
	return cookies.ToMap(cookies.ParseCookies(d.Header("Cookie")))
}

var compressedRoutes = map[string]struct {
	encoding compression.CompressionType
	flag     string
}{
	"/gzip":    {compression.CompressionGzip, "gzipped"},
	"/deflate": {compression.CompressionDeflate, "deflated"},
	"/brotli":  {compression.CompressionBrotli, "brotli"},
	"/zstd":    {compression.CompressionZstd, "zstd"},
}

// Compressed echoes the request encoded with the encoding named by the path
func (h *HTTPBin) Compressed(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	d, ok := h.describe(w, r, ps)
	if !ok {
		return
	}
	route, found := compressedRoutes[d.Path()]
	if !found {
		h.writeError(w, errors.NewError(errors.ErrorTypeNotFound, "Not Found", d.Path()))
		return
	}
	h.writeCompressed(w, d, route.encoding, route.flag)
}

// Negotiated echoes the request in the encoding the client prefers by
// Accept-Encoding, or uncompressed when none is acceptable.
func (h *HTTPBin) Negotiated(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	d, ok := h.describe(w, r, ps)
	if !ok {
		return
	}
	h.writeCompressed(w, d, compression.Negotiate(d.Header("Accept-Encoding")), "")
}

func (h *HTTPBin) writeCompressed(w http.ResponseWriter, d *request.Descriptor, encoding compression.CompressionType, flag string) {
	echo, err := newEcho(d, false)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if flag != "" {
		echo[flag] = true
	} else {
		echo["encoding"] = encoding.String()
	}

	body, err := json.Marshal(echo)
	if err != nil {
		h.writeError(w, err)
		return
	}
	compressed, err := compression.Compress(body, encoding)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if encoding != compression.CompressionNone {
		w.Header().Set("Content-Encoding", encoding.String())
	}
	w.Header().Set("Vary", "Accept-Encoding")
	writeResponse(w, http.StatusOK, jsonContentType, compressed)
}

// Base64 decodes a URL-safe or standard base64 path segment
func (h *HTTPBin) Base64(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	d, ok := h.describe(w, r, ps)
	if !ok {
		return
	}
	raw := d.PathParam("value")
	decoded, err := decodeBase64(raw)
	if err != nil {
		h.writeError(w, errors.InvalidParameter("base64 value", raw, err))
		return
	}
	writeResponse(w, http.StatusOK, textContentType, decoded)
}

func decodeBase64(s string) ([]byte, error) {
	var firstErr error
	for _, enc := range []*base64.Encoding{
		base64.URLEncoding,
		base64.StdEncoding,
		base64.RawURLEncoding,
		base64.RawStdEncoding,
	} {
		b, err := enc.DecodeString(s)
		if err == nil {
			return b, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}
