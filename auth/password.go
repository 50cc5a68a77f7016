package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
)

// Credentials are stored as hex(HMAC-SHA512(salt, password)) next to the
// base64 salt. The construction matches the rows already in production, so
// existing users keep logging in.

const saltSize = 128

func generateSalt() (string, error) {
	raw := make([]byte, saltSize)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func hashPassword(password, salt string) string {
	mac := hmac.New(sha512.New, []byte(salt))
	mac.Write([]byte(password))
	return hex.EncodeToString(mac.Sum(nil))
}

func passwordMatches(password, salt, hash string) bool {
	return hmac.Equal([]byte(hashPassword(password, salt)), []byte(hash))
}
