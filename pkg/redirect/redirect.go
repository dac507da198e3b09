// Package redirect implements the stateless redirect chain and the single
// redirect-to hop. All chain state travels in the URL: the path carries the
// number of hops requested and the count query parameter the hops done.
package redirect

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/WhileEndless/go-httpbin/pkg/errors"
)

// CountParam is the query parameter carrying hops completed so far
const CountParam = "count"

// State is one step of a redirect chain
type State struct {
	Target  int
	Current int
}

// ParseState decodes the chain position from the path segment n and the
// count query value. An absent count means the chain has just started.
func ParseState(n, count string) (State, error) {
	target, err := strconv.Atoi(n)
	if err != nil {
		return State{}, errors.InvalidParameter("redirect count", n, err)
	}
	if target < 0 {
		return State{}, errors.OutOfRange("n", "redirect count must be non-negative")
	}

	current := 0
	if count != "" {
		current, err = strconv.Atoi(count)
		if err != nil {
			return State{}, errors.InvalidParameter(CountParam, count, err)
		}
		if current < 0 {
			return State{}, errors.OutOfRange(CountParam, "count must be non-negative")
		}
	}
	return State{Target: target, Current: current}, nil
}

// Terminal reports whether the chain ends at this step
func (s State) Terminal() bool {
	return s.Current >= s.Target
}

// Next returns the state of the following request
func (s State) Next() State {
	return State{Target: s.Target, Current: s.Current + 1}
}

// Location builds the URL of the next hop from the current absolute URL.
// Every query parameter other than count is dropped.
func (s State) Location(current string) (string, error) {
	u, err := url.Parse(current)
	if err != nil {
		return "", errors.InvalidParameter("url", current, err)
	}
	u.RawQuery = url.Values{CountParam: {strconv.Itoa(s.Next().Current)}}.Encode()
	u.Fragment = ""
	return u.String(), nil
}

// AllowedCodes are the statuses redirect-to accepts
var AllowedCodes = []int{
	http.StatusMovedPermanently,
	http.StatusFound,
	http.StatusSeeOther,
	http.StatusTemporaryRedirect,
	http.StatusPermanentRedirect,
}

// Target is a single redirect to an arbitrary URL. The URL is not checked.
type Target struct {
	URL    string
	Status int
}

// ParseTarget validates redirect-to parameters. statusCode defaults to 302.
func ParseTarget(rawURL, statusCode string) (*Target, error) {
	if rawURL == "" {
		return nil, errors.MissingParameter("url")
	}

	status := http.StatusFound
	if statusCode != "" {
		code, err := strconv.Atoi(statusCode)
		if err != nil {
			return nil, errors.InvalidParameter("status_code", statusCode, err)
		}
		if !allowed(code) {
			return nil, errors.OutOfRange("status_code",
				"status_code must be one of 301, 302, 303, 307, 308")
		}
		status = code
	}
	return &Target{URL: rawURL, Status: status}, nil
}

func allowed(code int) bool {
	for _, c := range AllowedCodes {
		if c == code {
			return true
		}
	}
	return false
}
