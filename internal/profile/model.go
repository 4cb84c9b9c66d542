package profile

import "time"

// Document is a profile row exactly as stored. Role is left raw so that
// malformed values written by other clients can be detected at lookup time.
type Document struct {
	UID       string
	Role      *string
	Name      string
	Phone     string
	Email     string
	CreatedAt time.Time
}

// Record is a validated profile snapshot. Role is always a member of the
// closed set.
type Record struct {
	UID       string
	Role      Role
	Name      string
	Phone     string
	Email     string
	CreatedAt time.Time
}
