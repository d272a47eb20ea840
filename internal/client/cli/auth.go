package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/insuredesk/policykeeper/internal/client/api"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for account details and creates a new account via the API.
// It does not log the new account in.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	fullName, err := getSimpleText(a.reader, "Enter full name", os.Stdout)
	if err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	rctx, cancel := a.requestCtx(ctx)
	defer cancel()

	if err := a.api.Register(rctx, userName, string(password), fullName, email); err != nil {
		if errors.Is(err, api.ErrConflict) {
			log.Printf("Username %q is already taken", userName)
			return nil
		}
		return err
	}

	fmt.Println("Success! You can now log in.")
	return nil
}

// Login prompts for credentials and authenticates against the server. On
// success the session token is held by the API client and a.userName is set.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	rctx, cancel := a.requestCtx(ctx)
	defer cancel()

	session, err := a.api.Login(rctx, userName, string(password))
	if err != nil {
		switch {
		case errors.Is(err, api.ErrUnauthorized):
			log.Printf("Invalid username or password")
		case errors.Is(err, api.ErrUnavailable):
			log.Printf("Server unavailable: %s", err.Error())
		default:
			log.Printf("Login unsuccessful: %s", err.Error())
		}
		return nil
	}

	a.userName = session.Username
	log.Printf("Welcome, %s!", session.FullName)
	return nil
}

// Logout drops the session token.
func (a *App) Logout(ctx context.Context) error {
	a.api.Logout()
	a.userName = ""
	fmt.Println("Logged out")
	return nil
}
