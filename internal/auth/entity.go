package auth

import "github.com/golang-jwt/jwt/v5"

// Principal is the authenticated identity carried inside an access token.
type Principal struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// SigningKey holds an HMAC secret and the key id stamped into token headers.
type SigningKey struct {
	Kid    string
	Secret []byte
}

// accessClaims is the wire form of a Principal.
type accessClaims struct {
	Email  string `json:"email"`
	Role   string `json:"role"`
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}
