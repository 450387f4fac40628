package model

import "github.com/golang-jwt/jwt/v5"

// AppClaims are the JWT claims issued on login. RegisteredClaims.ID doubles
// as the session identifier CSRF tokens are bound to.
type AppClaims struct {
	UserID   int    `json:"user_id"`
	UserName string `json:"user_name"`
	jwt.RegisteredClaims
}
