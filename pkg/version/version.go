// Package version reports the server version
package version

// Version is the current server version
const Version = "1.0.0"

// ServerHeader is sent as the Server response header
func ServerHeader() string {
	return "go-httpbin/" + Version
}
