package cli

import (
	"context"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for email, username and password, creates the account
// and signs in. The entry list is loaded right after.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	u, err := a.session.Register(ctx, email, string(password), username)
	if err != nil {
		return err
	}

	a.printf("Welcome, %s!\n", u.Username)
	return a.entries.Refresh(ctx)
}

// Login prompts for credentials, signs in and loads the entry list.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	u, err := a.session.Login(ctx, email, string(password))
	if err != nil {
		return err
	}

	a.printf("Logged in as %s\n", u.Username)
	return a.entries.Refresh(ctx)
}

// Logout ends the session. The local state is logged out even when the
// backend call fails; only that failure is reported.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		a.println("Not logged in")
		return nil
	}
	a.listing = nil
	err := a.session.Logout(ctx)
	a.println("Logged out")
	return err
}

func (a *App) WhoAmI(context.Context) error {
	u := a.session.User()
	if u == nil {
		a.println("Not logged in")
		return nil
	}
	a.printf("%s <%s>\nprofile: %s\naccount: %s\n", u.Username, u.Email, u.ID, u.AccountID)
	a.printf("places visited: %d\n", len(a.entries.Entries()))
	return nil
}
