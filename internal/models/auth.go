package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// OperatorRole is the role carried by operator tokens.
type OperatorRole string

const RoleOperator OperatorRole = "OPERATOR"

// LoginRequest holds credentials for authenticating an operator.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	IP       string `json:"-"`
}

// LoginResponse returns the issued token and operator info.
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresIn   int64        `json:"expires_in"`
	Operator    OperatorInfo `json:"operator"`
	IssuedAt    time.Time    `json:"issued_at"`
}

// OperatorInfo describes the authenticated operator in responses.
type OperatorInfo struct {
	Email string       `json:"email"`
	Name  string       `json:"name"`
	Role  OperatorRole `json:"role"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	Email string       `json:"email"`
	Name  string       `json:"name"`
	Role  OperatorRole `json:"role"`
	jwt.RegisteredClaims
}
