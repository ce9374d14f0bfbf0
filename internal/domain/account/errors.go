package account

import "errors"

// ErrDuplicateEmail is reported by stores when the email uniqueness
// constraint rejects an insert.
var ErrDuplicateEmail = errors.New("email already registered")
