package auth

import "github.com/golang-jwt/jwt/v5"

// RoleStaff is the only role minted today; the counter has a single
// shared kitchen passcode.
const RoleStaff = "staff"

// StaffTokenClaims represents the typed JWT issued to kitchen staff.
type StaffTokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}
