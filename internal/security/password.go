package security

import "golang.org/x/crypto/bcrypt"

// Credentials are stored as bcrypt hashes at the library's default cost.
// The salt lives inside the hash, so two hashes of one password differ.

func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)

	if err != nil {
		return "", err
	}

	return string(b), nil
}

// CheckPassword returns nil when plain matches the stored hash.
func CheckPassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
