// Package common contains shared constants and sentinel errors used across
// shopkeeper components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// AuthorizationHeaderName and BearerScheme describe how HTTP callers
// present a token: "Authorization: Bearer <token>".
const (
	AuthorizationHeaderName = "Authorization"
	BearerScheme            = "Bearer"
)

// Well-known role names.
const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)
