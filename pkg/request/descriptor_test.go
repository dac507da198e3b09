package request

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/WhileEndless/go-httpbin/pkg/compression"
	"github.com/WhileEndless/go-httpbin/pkg/errors"
)

func TestNew_HeadersAreCaseInsensitiveLastWins(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/get", nil)
	r.Header.Add("X-Dup", "first")
	r.Header.Add("X-Dup", "second")

	d, err := New(r, nil, Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if got := d.Header("x-dup"); got != "second" {
		t.Errorf("Header(x-dup) = %q, want second", got)
	}
	if got := d.Header("HOST"); got != "example.com" {
		t.Errorf("Header(HOST) = %q, want example.com", got)
	}
	if got := d.Headers()["X-Dup"]; got != "second" {
		t.Errorf("Headers()[X-Dup] = %q, want second", got)
	}
}

func TestNew_QueryCollapsesToLastValue(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/get?a=1&a=2&b=x", nil)

	d, err := New(r, nil, Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if got := d.Query("a"); got != "2" {
		t.Errorf("Query(a) = %q, want 2", got)
	}
	if got := d.QueryValues()["a"]; len(got) != 2 {
		t.Errorf("QueryValues()[a] = %v, want both values", got)
	}
	args := d.Args()
	if args["a"] != "2" || args["b"] != "x" {
		t.Errorf("Args() = %v", args)
	}
	if _, ok := d.LookupQuery("missing"); ok {
		t.Error("LookupQuery(missing) reported present")
	}
}

func TestNew_IsImmutable(t *testing.T) {
	params := map[string]string{"user": "alice"}
	r := httptest.NewRequest(http.MethodPost, "/post?k=v", strings.NewReader("payload"))

	d, err := New(r, params, Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	params["user"] = "mallory"
	d.QueryValues()["k"][0] = "changed"
	d.Body()[0] = 'X'
	d.Headers()["Host"] = "changed"

	if d.PathParam("user") != "alice" {
		t.Errorf("path params aliased the caller map")
	}
	if d.Query("k") != "v" {
		t.Errorf("query values aliased")
	}
	if string(d.Body()) != "payload" {
		t.Errorf("body aliased: %q", d.Body())
	}
	if d.Header("Host") != "example.com" {
		t.Errorf("headers aliased")
	}
}

func TestNew_URLAndRequestURI(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/redirect/3?count=1", nil)
	r.Header.Set("X-Forwarded-Proto", "https")
	r.RemoteAddr = "192.0.2.10:4567"

	d, err := New(r, nil, Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if got := d.URL(); got != "https://example.com/redirect/3?count=1" {
		t.Errorf("URL() = %q", got)
	}
	if got := d.RequestURI(); got != "/redirect/3?count=1" {
		t.Errorf("RequestURI() = %q", got)
	}
	if got := d.RemoteAddress(); got != "192.0.2.10" {
		t.Errorf("RemoteAddress() = %q", got)
	}
	if got := d.BaseURL(); got != "https://example.com" {
		t.Errorf("BaseURL() = %q", got)
	}
}

func TestNew_DecodesCompressedBody(t *testing.T) {
	compressed, err := compression.Compress([]byte(`{"token":"abc"}`), compression.CompressionGzip)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}

	r := httptest.NewRequest(http.MethodPost, "/post", bytes.NewReader(compressed))
	r.Header.Set("Content-Encoding", "gzip")
	r.Header.Set("Content-Type", "application/json")

	d, err := New(r, nil, Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	v, err := d.JSON()
	if err != nil {
		t.Fatalf("JSON() error = %v", err)
	}
	m, ok := v.(map[string]any)
	if !ok || m["token"] != "abc" {
		t.Errorf("JSON() = %v", v)
	}
}

func TestNew_BodyTooLarge(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/post", strings.NewReader("0123456789"))

	_, err := New(r, nil, Options{MaxBodySize: 5})
	if !errors.Is(err, errors.ErrorTypeBodyTooLarge) {
		t.Fatalf("New() error = %v, want BodyTooLarge", err)
	}
	if errors.StatusCode(err) != http.StatusRequestEntityTooLarge {
		t.Errorf("StatusCode = %d", errors.StatusCode(err))
	}
}

func TestNew_UnsupportedContentEncoding(t *testing.T) {
	for _, encoding := range []string{"compress", "gzip, br"} {
		r := httptest.NewRequest(http.MethodPost, "/post", strings.NewReader("data"))
		r.Header.Set("Content-Encoding", encoding)

		_, err := New(r, nil, Options{})
		if errors.StatusCode(err) != http.StatusUnsupportedMediaType {
			t.Errorf("Content-Encoding %q: StatusCode = %d, want 415", encoding, errors.StatusCode(err))
		}
	}

	// identity is a no-op
	r := httptest.NewRequest(http.MethodPost, "/post", strings.NewReader("data"))
	r.Header.Set("Content-Encoding", "identity")
	d, err := New(r, nil, Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if string(d.Body()) != "data" {
		t.Errorf("Body() = %q, want data", d.Body())
	}
}

func TestJSON_MalformedBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/post", strings.NewReader("{not json"))
	r.Header.Set("Content-Type", "application/json")

	d, _ := New(r, nil, Options{})
	if _, err := d.JSON(); !errors.Is(err, errors.ErrorTypeMalformedBody) {
		t.Errorf("JSON() error = %v, want MalformedBody", err)
	}
}

func TestJSON_IgnoresOtherContentTypes(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/post", strings.NewReader(`{"a":1}`))
	r.Header.Set("Content-Type", "text/plain")

	d, _ := New(r, nil, Options{})
	v, err := d.JSON()
	if err != nil || v != nil {
		t.Errorf("JSON() = %v, %v; want nil, nil", v, err)
	}
}

func TestForm_URLEncoded(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/post", strings.NewReader("token=abc&x=1&x=2"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	d, _ := New(r, nil, Options{})
	form, err := d.Form()
	if err != nil {
		t.Fatalf("Form() error = %v", err)
	}
	if form.Values.Get("token") != "abc" || len(form.Values["x"]) != 2 {
		t.Errorf("Form().Values = %v", form.Values)
	}
}

func TestForm_Multipart(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("field", "value")
	fw, _ := mw.CreateFormFile("upload", "a.txt")
	_, _ = fw.Write([]byte("file content"))
	_ = mw.Close()

	r := httptest.NewRequest(http.MethodPost, "/post", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())

	d, _ := New(r, nil, Options{})
	form, err := d.Form()
	if err != nil {
		t.Fatalf("Form() error = %v", err)
	}
	if form.Values.Get("field") != "value" {
		t.Errorf("field = %q", form.Values.Get("field"))
	}
	if got := form.Files["upload"]; len(got) != 1 || got[0] != "file content" {
		t.Errorf("Files[upload] = %v", got)
	}
}
