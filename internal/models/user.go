package models

// User represents the signed-in account on the backend
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	TimewHook bool   `json:"timew_hook"`
}

// AuthResult is returned by sign in and sign up
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
