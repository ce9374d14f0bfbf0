package auth

// RegisterRequest represents the request payload for registering an account.
// Only presence is checked; email format and password strength are left to clients.
type RegisterRequest struct {
	Name     string `validate:"required"`
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

// RegisterResponse carries the persisted account.
type RegisterResponse struct {
	Account Account
}

// LoginRequest represents the request payload for a login attempt.
type LoginRequest struct {
	Email    string
	Password string
}

// LoginResponse is reserved for a future login flow.
type LoginResponse struct {
	Account Account
}

// Account represents an account DTO for API responses. The stored
// credential is deliberately absent.
type Account struct {
	ID    int64
	Name  string
	Email string
}
