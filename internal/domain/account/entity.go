package account

// Account represents a registered user account.
type Account struct {
	ID       int64  // ID is the server-generated surrogate key
	Name     string // Name is the display name
	Email    string // Email is unique across all accounts, compared byte for byte
	Password string // Password is the stored credential as produced by the credential store
}
