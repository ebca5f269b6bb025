// Package cli implements the interactive shopkeeper client: a small REPL
// over the gRPC AuthService with register, login, whoami and logout.
// Passwords are read from the terminal without echo and wiped after use.
package cli
