// Package client talks to the shopkeeper gRPC AuthService.
//
// GRPCClient keeps the access token returned by Login in memory and injects
// it as "access_token" metadata on every call through a unary interceptor.
// gRPC status codes are mapped to the sentinel errors in errors.go so the
// CLI can match them with errors.Is.
package client
