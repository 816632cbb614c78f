package shared

// shared types across the application

// Identity is the verified caller behind a request.
type Identity struct {
	UserID string `json:"user_id"` // token subject
	Email  string `json:"email"`   // empty when the token carries no email claim
}

// Anonymous reports whether no caller was verified.
func (i Identity) Anonymous() bool {
	return i.UserID == ""
}
