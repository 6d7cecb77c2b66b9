package auth

import "golang.org/x/crypto/bcrypt"

// APIKeyVerifier defines the interface for comparing API keys against their
// stored hashes.
type APIKeyVerifier interface {
	// Compare compares a hashed API key with its possible plaintext equivalent.
	// Returns nil on success, or an error on failure (e.g., mismatch).
	Compare(hashedKey, apiKey string) error
}

// BcryptVerifier implements APIKeyVerifier using bcrypt.
type BcryptVerifier struct{}

// NewBcryptVerifier creates a new BcryptVerifier.
func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{}
}

// Compare implements the APIKeyVerifier interface using bcrypt.
func (v *BcryptVerifier) Compare(hashedKey, apiKey string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedKey), []byte(apiKey))
}

// HashAPIKey hashes a plaintext API key with bcrypt at the given cost.
// A cost of 0 uses the bcrypt default.
func HashAPIKey(apiKey string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(apiKey), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
