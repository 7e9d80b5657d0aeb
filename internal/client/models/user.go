package models

// User is the authenticated traveler.
//
// ID is the profile document identifier and is the owner reference stored on
// every entry. AccountID is the identity-service account it belongs to.
type User struct {
	ID        string
	AccountID string
	Email     string
	Username  string
	Avatar    string
}

// Session is what a successful login returns.
type Session struct {
	ID        string
	AccountID string
	Expire    string
}
