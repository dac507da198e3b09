package httpbin

import (
	"embed"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/WhileEndless/go-httpbin/pkg/errors"
)

//go:embed assets
var assets embed.FS

const maxLinks = 256

func mustAsset(name string) []byte {
	b, err := assets.ReadFile("assets/" + name)
	if err != nil {
		panic(fmt.Sprintf("httpbin: missing asset %s: %v", name, err))
	}
	return b
}

// JSON returns a sample JSON document
func (h *HTTPBin) JSON(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeResponse(w, http.StatusOK, jsonContentType, mustAsset("sample.json"))
}

// XML returns a sample XML document
func (h *HTTPBin) XML(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeResponse(w, http.StatusOK, "application/xml", mustAsset("sample.xml"))
}

// HTML returns a sample HTML page
func (h *HTTPBin) HTML(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeResponse(w, http.StatusOK, htmlContentType, mustAsset("sample.html"))
}

// UTF8 returns a page exercising multi-byte characters
func (h *HTTPBin) UTF8(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeResponse(w, http.StatusOK, htmlContentType, mustAsset("utf8.html"))
}

// FormsPost returns a form submitting to /post
func (h *HTTPBin) FormsPost(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeResponse(w, http.StatusOK, htmlContentType, mustAsset("forms-post.html"))
}

// Robots returns a robots.txt disallowing /deny
func (h *HTTPBin) Robots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeResponse(w, http.StatusOK, textContentType, []byte("User-agent: *\nDisallow: /deny\n"))
}

// Links redirects /links/{n} to its first page and renders /links/{n}/{offset}
func (h *HTTPBin) Links(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	d, ok := h.describe(w, r, ps)
	if !ok {
		return
	}

	n, err := nonNegativeInt(d, "n")
	if err != nil {
		h.writeError(w, err)
		return
	}
	if n > maxLinks {
		h.writeError(w, errors.OutOfRange("n", "n must not exceed "+strconv.Itoa(maxLinks)))
		return
	}

	if d.PathParam("offset") == "" {
		w.Header().Set("Location", "/links/"+strconv.Itoa(n)+"/0")
		w.WriteHeader(http.StatusFound)
		return
	}
	offset, err := nonNegativeInt(d, "offset")
	if err != nil {
		h.writeError(w, err)
		return
	}

	var b strings.Builder
	b.WriteString("<html><head><title>Links</title></head><body>")
	for i := 0; i < n; i++ {
		if i == offset {
			fmt.Fprintf(&b, "%d ", i)
		} else {
			fmt.Fprintf(&b, `<a href="/links/%d/%d">%d</a> `, n, i, i)
		}
	}
	b.WriteString("</body></html>")
	writeResponse(w, http.StatusOK, htmlContentType, []byte(b.String()))
}

// Cache answers 304 to conditional requests and echoes otherwise
func (h *HTTPBin) Cache(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	d, ok := h.describe(w, r, ps)
	if !ok {
		return
	}
	if d.HasHeader("If-Modified-Since") || d.HasHeader("If-None-Match") {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	echo, err := newEcho(d, false)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	w.Header().Set("ETag", `"`+d.Header(RequestIDHeader)+`"`)
	writeJSON(w, http.StatusOK, echo)
}
