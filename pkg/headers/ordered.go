package headers

import (
	"net/http"
	"net/textproto"
	"slices"
	"strings"
	"sync"
)

// OrderedHeaders preserves the order of HTTP headers and handles case-insensitive lookups.
// Setting an existing name replaces its value (last write wins).
type OrderedHeaders struct {
	mu     sync.RWMutex
	order  []string          // Preserves insertion order
	values map[string]string // Case-insensitive storage (lowercase keys)
	raw    map[string]string // Name as first presented
}

// Header represents a single HTTP header
type Header struct {
	Name  string
	Value string
}

// NewOrderedHeaders creates a new OrderedHeaders instance
func NewOrderedHeaders() *OrderedHeaders {
	return &OrderedHeaders{
		order:  make([]string, 0),
		values: make(map[string]string),
		raw:    make(map[string]string),
	}
}

// FromHTTPHeader builds OrderedHeaders from a net/http header map.
// Multi-valued headers collapse to their last value. Names are sorted
// because http.Header does not retain wire order.
func FromHTTPHeader(h http.Header) *OrderedHeaders {
	oh := NewOrderedHeaders()
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		values := h[name]
		if len(values) == 0 {
			continue
		}
		oh.Set(name, values[len(values)-1])
	}
	return oh
}

// Set adds or updates a header. An existing header keeps its position and
// the name it was first stored under.
func (h *OrderedHeaders) Set(name, value string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	lowerName := strings.ToLower(name)

	if _, exists := h.values[lowerName]; !exists {
		h.order = append(h.order, lowerName)
		h.raw[lowerName] = name
	}
	h.values[lowerName] = value
}

// Get retrieves a header value (case-insensitive)
func (h *OrderedHeaders) Get(name string) string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.values[strings.ToLower(name)]
}

// Lookup retrieves a header value and whether it was present
func (h *OrderedHeaders) Lookup(name string) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	v, ok := h.values[strings.ToLower(name)]
	return v, ok
}

// Has checks if a header exists (case-insensitive)
func (h *OrderedHeaders) Has(name string) bool {
	_, ok := h.Lookup(name)
	return ok
}

// Map returns the headers keyed by canonical name (e.g. "User-Agent"),
// which is the shape echoed back to clients.
func (h *OrderedHeaders) Map() map[string]string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	m := make(map[string]string, len(h.order))
	for _, lowerName := range h.order {
		m[textproto.CanonicalMIMEHeaderKey(h.raw[lowerName])] = h.values[lowerName]
	}
	return m
}
