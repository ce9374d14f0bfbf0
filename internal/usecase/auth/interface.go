package auth

import "context"

// Usecase defines the interface for account registration operations.
type Usecase interface {
	Register(ctx context.Context, in RegisterRequest) (*RegisterResponse, error)
	Login(ctx context.Context, in LoginRequest) (*LoginResponse, error)
}
