package auth

// User represents an account allowed to sign in to the dashboard.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
}

// LoginResult is returned after a successful sign-in.
type LoginResult struct {
	Success bool       `json:"success"`
	Token   string     `json:"token"`
	User    PublicUser `json:"user"`
}

// PublicUser is the subset of User safe to return to clients.
type PublicUser struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}
