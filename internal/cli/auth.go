package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/vinony/internal/common"
	"github.com/dmitrijs2005/vinony/internal/models"
)

// Register prompts for name, email and password and creates an account.
// The new user is signed in and gets a fresh thread.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.session.Register(ctx, name, email, password)
	if err != nil {
		return err
	}
	if _, err := a.conv.EnsureThread(ctx); err != nil {
		return err
	}

	a.println("Welcome,", u.Name+"!")
	return nil
}

// Login prompts for email and password and signs in.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.session.Authenticate(ctx, email, password)
	if err != nil {
		return err
	}
	if _, err := a.conv.EnsureThread(ctx); err != nil {
		return err
	}

	a.println("Signed in as", u.Email)
	return nil
}

// Logout ends the session. The account and its data are kept.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.EndSession(ctx); err != nil {
		return err
	}
	a.println("Signed out")
	return nil
}

// Whoami prints the active user.
func (a *App) Whoami(ctx context.Context) error {
	u := a.session.CurrentUser(ctx)
	if u == nil {
		return common.ErrNoActiveSession
	}
	a.println(u.String())
	return nil
}

// Profile edits name, email and plan. An empty answer keeps the current
// value.
func (a *App) Profile(ctx context.Context) error {
	u := a.session.CurrentUser(ctx)
	if u == nil {
		return common.ErrNoActiveSession
	}

	var upd models.UserUpdate

	name, err := getSimpleText(a.reader, fmt.Sprintf("Name [%s]", u.Name), a.out)
	if err != nil {
		return err
	}
	if name != "" {
		upd.Name = &name
	}

	email, err := getSimpleText(a.reader, fmt.Sprintf("Email [%s]", u.Email), a.out)
	if err != nil {
		return err
	}
	if email != "" {
		upd.Email = &email
	}

	plan, err := getSimpleText(a.reader, fmt.Sprintf("Plan (starter, pro) [%s]", u.Plan), a.out)
	if err != nil {
		return err
	}
	if plan != "" {
		p := models.Plan(strings.ToLower(plan))
		upd.Plan = &p
	}

	updated, err := a.session.Update(ctx, upd)
	if err != nil {
		return err
	}
	a.println("Saved:", updated.String())
	return nil
}

// Passwd changes the password of the active account.
func (a *App) Passwd(ctx context.Context) error {
	current, err := getPassword("Current password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(current)

	next, err := getPassword("New password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(next)

	if err := a.session.ChangePassword(ctx, current, next); err != nil {
		return err
	}
	a.println("Password changed")
	return nil
}

// DeleteAccount wipes all local data after an explicit confirmation.
func (a *App) DeleteAccount(ctx context.Context) error {
	if !a.isLoggedIn() {
		return common.ErrNoActiveSession
	}

	answer, err := getSimpleText(a.reader, "This removes every account, chat and image. Type 'delete' to confirm", a.out)
	if err != nil {
		return err
	}
	if answer != "delete" {
		a.println("Cancelled")
		return nil
	}

	if err := a.session.DeleteAccount(ctx); err != nil {
		return err
	}
	a.println("Account deleted")
	return nil
}
