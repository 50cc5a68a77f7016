package auth

import (
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// TokenEncoder turns a username into the signed token stored in the session
// cookie.
type TokenEncoder interface {
	Encode(string) (string, error)
}

type TokenDecoder interface {
	Decode(string) (string, error)
}

type EncodeDecoder struct {
	Key string
}

// SessionDuration is how long a session cookie stays valid.
const SessionDuration = 3 * 24 * time.Hour

type sessionClaims struct {
	Username string `json:"username"`
	jwt.StandardClaims
}

func (e EncodeDecoder) Encode(username string) (string, error) {
	claims := sessionClaims{
		username,
		jwt.StandardClaims{
			ExpiresAt: time.Now().Add(SessionDuration).Unix(),
			Issuer:    "enotes",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(e.Key))
}

func (e EncodeDecoder) Decode(raw string) (string, error) {
	claims := sessionClaims{}

	token, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(e.Key), nil
	})
	if err != nil {
		return "", err
	}

	if claims, ok := token.Claims.(*sessionClaims); ok && token.Valid {
		return claims.Username, nil
	}

	return "", errors.New("could not get claims")
}
