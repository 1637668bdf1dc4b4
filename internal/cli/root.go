package cli

import (
	"context"
	"fmt"
)

func (a *App) getStatus() string {
	ctx := context.Background()

	u := a.session.CurrentUser(ctx)
	if u == nil {
		return ""
	}
	s := u.Email
	if t, err := a.conv.ActiveThread(ctx); err == nil {
		s += " | " + t.Title
	}
	return fmt.Sprintf(" (%s)", s)
}

// Root greets the user and runs the REPL on the app's input.
func (a *App) Root(ctx context.Context) {
	a.println("Welcome to Vinony CLI (type 'help' for commands)")

	if u := a.session.CurrentUser(ctx); u != nil {
		if _, err := a.conv.EnsureThread(ctx); err != nil {
			a.log.Error(ctx, "cannot prepare a thread", "error", err.Error())
		}
		a.println("Signed in as", u.Email)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}
