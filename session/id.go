package session

import "github.com/oklog/ulid/v2"

// NewSessionID returns a lexically sortable, time ordered session id.
// Ids from one process are strictly increasing.
func NewSessionID() string {
	return ulid.Make().String()
}
