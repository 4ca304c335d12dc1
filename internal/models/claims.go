package models

import "github.com/golang-jwt/jwt/v5"

// Roles issued by the identity provider.
const (
	RoleWorker   = "worker"
	RoleEmployer = "employer"
)

// UserClaims are the claims carried by tokens from the identity
// provider. The engine trusts them as-is; verifying the caller's
// identity happens upstream.
type UserClaims struct {
	jwt.RegisteredClaims
	Role        string `json:"role"`
	PhoneNumber string `json:"phone_number"`
}

// SubjectID returns the authenticated caller's id. Workers and
// employers share the subject namespace with their entity ids.
func (c *UserClaims) SubjectID() string {
	return c.Subject
}
