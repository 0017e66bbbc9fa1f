package model

import "time"

// AuthToken is the opaque API token issued by the warehouse provider.
// TestMode records which environment issued it, so data calls made with a
// cached token keep hitting the environment that authenticated them.
// No local expiry is tracked; the server decides validity on each request.
type AuthToken struct {
	Value      string
	ObtainedAt time.Time
	TestMode   bool
}

// Present reports whether the token holds a usable value.
func (t AuthToken) Present() bool {
	return t.Value != ""
}
