package ports

// PasswordHasher derives and checks one-way password hashes.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify never returns an error; a corrupt hash simply does not match.
	Verify(plaintext, hash string) bool
}

// TokenIssuer mints and verifies bearer tokens for a user id.
type TokenIssuer interface {
	Issue(userID string) (string, error)
	// Verify returns domain.ErrInvalidToken for any token that does not fully verify.
	Verify(token string) (string, error)
}
