package models

// Identity is the outcome of resolving a request's session: either
// anonymous or authenticated as exactly one user.
type Identity struct {
	userID        int64
	authenticated bool
}

// Anonymous is the identity of a request without a valid session.
func Anonymous() Identity { return Identity{} }

// Authenticated returns the identity of a logged-in user.
func Authenticated(userID int64) Identity {
	return Identity{userID: userID, authenticated: true}
}

func (i Identity) IsAuthenticated() bool { return i.authenticated }

// UserID returns the authenticated user id, or 0 for Anonymous.
func (i Identity) UserID() int64 { return i.userID }
