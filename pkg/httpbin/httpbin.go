// Package httpbin serves the HTTP testing endpoints. Every handler reduces
// the inbound request to a request.Descriptor and answers with JSON or a
// deliberately shaped response.
package httpbin

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"github.com/WhileEndless/go-httpbin/pkg/config"
	"github.com/WhileEndless/go-httpbin/pkg/logging"
	"github.com/WhileEndless/go-httpbin/pkg/request"
)

// Options configures an HTTPBin
type Options struct {
	MaxBodySize    int64         // Request and generated body limit (default: 1MiB)
	MaxDuration    time.Duration // Upper bound for drip and delay (default: 10s)
	MaxStreamLines int           // Cap for /stream/{n} (default: 100)
	LineInterval   time.Duration // Pause between streamed lines (default: 50ms)
	RedirectStatus int           // Status used by /redirect/{n} (default: 302)
	Logger         *zap.Logger   // Nop when nil
}

// OptionsFromConfig maps server configuration onto Options
func OptionsFromConfig(c *config.Config, logger *zap.Logger) Options {
	return Options{
		MaxBodySize:    c.MaxBodySize,
		MaxDuration:    c.MaxDuration,
		MaxStreamLines: c.MaxStreamLines,
		LineInterval:   c.LineInterval,
		RedirectStatus: c.RedirectStatus,
		Logger:         logger,
	}
}

// HTTPBin holds the endpoint handlers
type HTTPBin struct {
	opts   Options
	logger *zap.Logger
}

// New creates an HTTPBin, filling unset options with defaults
func New(opts Options) *HTTPBin {
	defaults := config.Default()
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = defaults.MaxBodySize
	}
	if opts.MaxDuration <= 0 {
		opts.MaxDuration = defaults.MaxDuration
	}
	if opts.MaxStreamLines <= 0 {
		opts.MaxStreamLines = defaults.MaxStreamLines
	}
	if opts.LineInterval <= 0 {
		opts.LineInterval = defaults.LineInterval
	}
	if opts.RedirectStatus == 0 {
		opts.RedirectStatus = defaults.RedirectStatus
	}
	return &HTTPBin{opts: opts, logger: logging.OrNop(opts.Logger)}
}

// Handler returns the routed handler wrapped in middleware
func (h *HTTPBin) Handler() http.Handler {
	router := httprouter.New()
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Not Found"})
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "Method Not Allowed"})
	})

	router.GET("/", h.Home)
	router.GET("/health", h.Health)

	// auth
	router.GET("/auth/basic-auth/:user/:pass", h.BasicAuth)
	router.GET("/auth/hidden-basic-auth/:user/:pass", h.HiddenBasicAuth)
	router.GET("/auth/bearer", h.BearerAuth)
	router.GET("/auth/digest-auth/:qop/:user/:pass", h.DigestAuth)
	router.GET("/auth/digest-auth/:qop/:user/:pass/:algo", h.DigestAuth)
	router.GET("/auth/digest-auth/:qop/:user/:pass/:algo/:stale", h.DigestAuth)
	router.POST("/auth/validate-token", h.ValidateToken)

	// redirects and status
	router.GET("/redirect/:n", h.Redirect)
	router.GET("/redirect-to", h.RedirectTo)
	router.GET("/status/:code", h.Status)
	router.GET("/deny", h.Deny)

	// streaming and generated bytes
	router.GET("/drip", h.Drip)
	router.GET("/stream/:n", h.Stream)
	router.GET("/delay/:seconds", h.Delay)
	router.GET("/bytes/:n", h.Bytes)
	router.GET("/range/:n", h.Range)

	// echo
	router.GET("/get", h.Echo)
	router.POST("/post", h.Echo)
	router.PUT("/put", h.Echo)
	router.PATCH("/patch", h.Echo)
	router.DELETE("/delete", h.Echo)
	for _, method := range []string{
		http.MethodGet, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete,
	} {
		router.Handle(method, "/anything", h.Echo)
		router.Handle(method, "/anything/*rest", h.Echo)
	}

	// inspection
	router.GET("/headers", h.Headers)
	router.GET("/ip", h.IP)
	router.GET("/user-agent", h.UserAgent)
	router.GET("/uuid", h.UUID)
	router.GET("/response-headers", h.ResponseHeaders)

	// cookies
	router.GET("/cookies", h.Cookies)
	router.GET("/cookies/set", h.SetCookies)
	router.GET("/cookies/delete", h.DeleteCookies)

	// encodings and static documents
	router.GET("/gzip", h.Compressed)
	router.GET("/deflate", h.Compressed)
	router.GET("/brotli", h.Compressed)
	router.GET("/zstd", h.Compressed)
	router.GET("/compressed", h.Negotiated)
	router.GET("/base64/:value", h.Base64)
	router.GET("/json", h.JSON)
	router.GET("/xml", h.XML)
	router.GET("/html", h.HTML)
	router.GET("/encoding/utf8", h.UTF8)
	router.GET("/forms/post", h.FormsPost)
	router.GET("/links/:n", h.Links)
	router.GET("/links/:n/:offset", h.Links)
	router.GET("/cache", h.Cache)
	router.GET("/robots.txt", h.Robots)

	router.GET("/websocket/echo", h.WebSocketEcho)

	return chain(router,
		h.recoverer,
		h.accessLog,
		requestID,
		serverHeader,
	)
}

// describe builds the request descriptor, answering with an error on failure
func (h *HTTPBin) describe(w http.ResponseWriter, r *http.Request, ps httprouter.Params) (*request.Descriptor, bool) {
	params := make(map[string]string, len(ps))
	for _, p := range ps {
		params[p.Key] = p.Value
	}
	d, err := request.New(r, params, request.Options{MaxBodySize: h.opts.MaxBodySize})
	if err != nil {
		h.writeError(w, err)
		return nil, false
	}
	return d, true
}
