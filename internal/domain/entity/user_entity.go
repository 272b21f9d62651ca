package entity

import (
	"time"
)

// User is the aggregate root for the identity domain. There is no
// password: identity is proven by control of the email address, and
// IsVerified is the single fact this subsystem mutates after creation.
type User struct {
	ID         string
	Email      string
	Name       string
	IsVerified bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
