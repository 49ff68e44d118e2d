package core

import "time"

// Clock is injected wherever lifecycle code reads the time.
type Clock interface {
	Now() time.Time
}
