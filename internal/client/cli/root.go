package cli

import (
	"context"
	"fmt"
)

func (a *App) getStatus() string {
	switch {
	case a.session.IsLoading():
		return "(starting)"
	case !a.session.IsLoggedIn():
		return "(logged out)"
	}
	u := a.session.User()
	return fmt.Sprintf("(%s)", u.Username)
}

// Root resumes the stored session, loads the entry list when logged in and
// then hands over to the REPL.
func (a *App) Root(ctx context.Context) {

	a.println("Welcome to Travel Diary (type 'help' for commands)")

	if err := a.session.Start(ctx); err != nil {
		a.println(describeError(err))
	}

	if a.isLoggedIn() {
		u := a.session.User()
		a.printf("Welcome back, %s!\n", u.Username)
		if err := a.entries.Refresh(ctx); err != nil {
			a.println(describeError(err))
		}
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}
