package domain

import "time"

// User mirrors the identity provider's principal in the document store.
type User struct {
	ID        string
	Name      string
	Email     string
	Image     string
	Provider  AuthProvider
	Disabled  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
