package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword returns the bcrypt digest of a plain password using the
// given cost. The cost comes from configuration so environments can tune
// how slow hashing is.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword compares a bcrypt digest with a plain password. The
// comparison is constant-time with respect to correctness.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
