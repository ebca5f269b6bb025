package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/shopkeeper/internal/client/client"
	"github.com/dmitrijs2005/shopkeeper/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a username, display name and password and creates the
// account.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, "Enter display name (optional)", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	profile, err := a.client.Register(ctx, userName, string(password), name)
	if err != nil {
		fmt.Fprintf(a.out, "Registration failed: %s\n", describe(err))
		return err
	}

	fmt.Fprintf(a.out, "Registered %s (id %s)\n", profile.UserName, profile.ID)
	return nil
}

// Login prompts for credentials and keeps the session token on success.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	profile, msg, err := a.client.Login(ctx, userName, string(password))
	if err != nil {
		fmt.Fprintf(a.out, "Login unsuccessful: %s\n", describe(err))
		return err
	}

	a.userName = userName
	if profile != nil {
		a.userName = profile.UserName
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

// WhoAmI prints the identity the server reads from the current token.
func (a *App) WhoAmI(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	id, err := a.client.WhoAmI(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "whoami failed: %s\n", describe(err))
		return err
	}

	role := id.Role
	if role == "" {
		role = "-"
	}
	fmt.Fprintf(a.out, "%s (id %s, role %s)\n", id.UserName, id.ID, role)
	return nil
}

// Logout drops the session token.
func (a *App) Logout(context.Context) error {
	a.client.Logout()
	a.userName = ""
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func describe(err error) string {
	switch {
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable"
	case errors.Is(err, client.ErrNotLoggedIn):
		return "not logged in"
	default:
		return err.Error()
	}
}
