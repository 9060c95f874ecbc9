package session

// UserProfile holds the display-relevant identity fields returned by the
// backend on login. The store keeps it verbatim; nothing in the client
// interprets its contents.
type UserProfile struct {
	ID        int    `json:"id,omitempty"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}
