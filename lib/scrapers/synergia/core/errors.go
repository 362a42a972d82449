package core

import "errors"

// The portal signals failure in several distinct ways; keep them apart
// so callers can tell a rejected operation from broken markup.
var (
	// the login handshake did not produce a usable session. the portal
	// does not let us distinguish bad credentials from a network error
	// or a relayouted login page.
	ErrAuthenticationFailed = errors.New("authentication failed")
	// a request could not be completed at the HTTP level
	// (network error or non-2xx status).
	ErrTransportFailed = errors.New("transport failed")
	// the portal served an access-denied or login page instead of the
	// requested resource.
	ErrAccessDenied = errors.New("access denied")
	// an expected DOM node is missing from the page.
	ErrStructureNotFound = errors.New("expected page structure not found")
	// a field was located but its contents do not match the expected
	// format.
	ErrMalformedField = errors.New("malformed field")
)
