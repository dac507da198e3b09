// Package request reduces an inbound HTTP request to an immutable Descriptor:
// the method, case-insensitive headers, query and path parameters, the
// decoded body and the remote address. Every endpoint consumes requests
// through this view.
package request

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/WhileEndless/go-httpbin/pkg/compression"
	"github.com/WhileEndless/go-httpbin/pkg/errors"
	"github.com/WhileEndless/go-httpbin/pkg/headers"
)

// DefaultMaxBodySize bounds how much of a request body is read
const DefaultMaxBodySize = 1 << 20

// Options controls descriptor construction
type Options struct {
	MaxBodySize int64 // Maximum decoded body size (default: 1MiB)
}

// Descriptor is a read-only view of one inbound request
type Descriptor struct {
	method     string
	url        *url.URL
	requestURI string
	headers    *headers.OrderedHeaders
	query      url.Values
	pathParams map[string]string
	body       []byte
	remoteAddr string
}

// New builds a Descriptor from r. pathParams are the values captured by
// route matching. The body is read fully, bounded by opts.MaxBodySize, and
// decoded when the request declares a supported Content-Encoding.
func New(r *http.Request, pathParams map[string]string, opts Options) (*Descriptor, error) {
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = DefaultMaxBodySize
	}

	h := headers.FromHTTPHeader(r.Header)
	// net/http lifts Host out of the header map
	if r.Host != "" {
		h.Set("Host", r.Host)
	}

	params := make(map[string]string, len(pathParams))
	for k, v := range pathParams {
		params[k] = v
	}

	body, err := readBody(r, opts.MaxBodySize)
	if err != nil {
		return nil, err
	}

	requestURI := r.RequestURI
	if requestURI == "" {
		requestURI = r.URL.RequestURI()
	}

	return &Descriptor{
		method:     r.Method,
		url:        absoluteURL(r),
		requestURI: requestURI,
		headers:    h,
		query:      r.URL.Query(),
		pathParams: params,
		body:       body,
		remoteAddr: remoteHost(r.RemoteAddr),
	}, nil
}

func readBody(r *http.Request, limit int64) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return []byte{}, nil
	}

	encoding := r.Header.Get("Content-Encoding")
	if !compression.IsSupported(encoding) {
		return nil, errors.NewError(errors.ErrorTypeUnsupportedEncoding,
			"unsupported Content-Encoding "+strconv.Quote(encoding), "body")
	}
	src, err := compression.NewDecompressReader(r.Body, compression.DetectCompression(encoding))
	if err != nil {
		return nil, err
	}
	defer src.Close()

	body, err := io.ReadAll(io.LimitReader(src, limit+1))
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeMalformedBody,
			"failed to read request body", "body", err)
	}
	if int64(len(body)) > limit {
		return nil, errors.NewError(errors.ErrorTypeBodyTooLarge,
			"request body exceeds "+strconv.FormatInt(limit, 10)+" bytes", "body")
	}
	return body, nil
}

func absoluteURL(r *http.Request) *url.URL {
	u := *r.URL
	u.Scheme = "http"
	if r.TLS != nil {
		u.Scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		u.Scheme = proto
	}
	if u.Host == "" {
		u.Host = r.Host
	}
	return &u
}

func remoteHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

// Method returns the request method
func (d *Descriptor) Method() string {
	return d.method
}

// URL returns the absolute URL the client requested
func (d *Descriptor) URL() string {
	return d.url.String()
}

// Path returns the request path without query
func (d *Descriptor) Path() string {
	return d.url.Path
}

// RequestURI returns the request target exactly as sent by the client
func (d *Descriptor) RequestURI() string {
	return d.requestURI
}

// BaseURL returns scheme://host of the request
func (d *Descriptor) BaseURL() string {
	return d.url.Scheme + "://" + d.url.Host
}

// Header returns a header value (case-insensitive, last value wins)
func (d *Descriptor) Header(name string) string {
	return d.headers.Get(name)
}

// HasHeader reports whether the header was sent
func (d *Descriptor) HasHeader(name string) bool {
	return d.headers.Has(name)
}

// Headers returns the request headers keyed by canonical name
func (d *Descriptor) Headers() map[string]string {
	return d.headers.Map()
}

// Query returns the last value of a query parameter
func (d *Descriptor) Query(name string) string {
	values := d.query[name]
	if len(values) == 0 {
		return ""
	}
	return values[len(values)-1]
}

// LookupQuery returns the last value of a query parameter and whether it was present
func (d *Descriptor) LookupQuery(name string) (string, bool) {
	values, ok := d.query[name]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[len(values)-1], true
}

// QueryValues returns a copy of all query values, multi-valued entries intact
func (d *Descriptor) QueryValues() url.Values {
	clone := make(url.Values, len(d.query))
	for k, v := range d.query {
		clone[k] = append([]string(nil), v...)
	}
	return clone
}

// Args returns the query parameters collapsed to their last value
func (d *Descriptor) Args() map[string]string {
	args := make(map[string]string, len(d.query))
	for k := range d.query {
		args[k] = d.Query(k)
	}
	return args
}

// PathParam returns a parameter captured by route matching
func (d *Descriptor) PathParam(name string) string {
	return d.pathParams[name]
}

// Body returns a copy of the decoded request body
func (d *Descriptor) Body() []byte {
	return bytes.Clone(d.body)
}

// RemoteAddress returns the client address without port
func (d *Descriptor) RemoteAddress() string {
	return d.remoteAddr
}

// MediaType returns the Content-Type without parameters, lowercased
func (d *Descriptor) MediaType() string {
	mt, _, err := mime.ParseMediaType(d.Header("Content-Type"))
	if err != nil {
		return ""
	}
	return mt
}

// JSON decodes the body as JSON. It returns nil for an empty body or a
// non-JSON content type.
func (d *Descriptor) JSON() (any, error) {
	if len(d.body) == 0 || !isJSON(d.MediaType()) {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(d.body, &v); err != nil {
		return nil, errors.Wrap(errors.ErrorTypeMalformedBody,
			"invalid JSON body", "body", err)
	}
	return v, nil
}

func isJSON(mediaType string) bool {
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// Form holds decoded form fields and uploaded files
type Form struct {
	Values url.Values
	Files  map[string][]string
}

// Form decodes url-encoded and multipart bodies. Other content types yield
// an empty form.
func (d *Descriptor) Form() (*Form, error) {
	form := &Form{Values: url.Values{}, Files: map[string][]string{}}

	mt, params, err := mime.ParseMediaType(d.Header("Content-Type"))
	if err != nil {
		return form, nil
	}

	switch mt {
	case "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(string(d.body))
		if err != nil {
			return nil, errors.Wrap(errors.ErrorTypeMalformedBody,
				"invalid form body", "body", err)
		}
		form.Values = values

	case "multipart/form-data":
		mr := multipart.NewReader(bytes.NewReader(d.body), params["boundary"])
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, errors.Wrap(errors.ErrorTypeMalformedBody,
					"invalid multipart body", "body", err)
			}
			content, err := io.ReadAll(part)
			if err != nil {
				return nil, errors.Wrap(errors.ErrorTypeMalformedBody,
					"invalid multipart body", "body", err)
			}
			if part.FileName() != "" {
				form.Files[part.FormName()] = append(form.Files[part.FormName()], string(content))
			} else {
				form.Values.Add(part.FormName(), string(content))
			}
		}
	}

	return form, nil
}
