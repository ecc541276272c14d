package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

// getSimpleText and getPassword are indirections over the input helpers
// so command tests can script the dialogue.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Choose a username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, "Choose a password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword(a.reader, "Repeat the password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if string(password) != string(confirm) {
		return fmt.Errorf("%w: passwords do not match", common.ErrInvalidInput)
	}

	email, err := getSimpleText(a.reader, "Email (optional)", a.out)
	if err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	u, err := a.auth.Register(ctx, userName, password, email)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "User %s registered. You can log in now.\n", u.UserName)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	callCtx, cancel := a.withTimeout(ctx)
	defer cancel()

	sess, err := a.auth.Login(callCtx, userName, password)
	if err != nil {
		return err
	}
	a.remember(ctx, sess.Token)

	fmt.Fprintf(a.out, "Logged in as %s.\n", sess.User.UserName)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	u, ok := a.auth.CurrentUser()
	a.auth.Logout(ctx)
	a.forget(ctx)

	if ok {
		fmt.Fprintf(a.out, "Goodbye, %s.\n", u.UserName)
	}
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	u, ok := a.auth.CurrentUser()
	if !ok {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}

	role := "user"
	if u.IsAdmin {
		role = "admin"
	}
	fmt.Fprintf(a.out, "%s (id %d, %s)", u.UserName, u.ID, role)
	if u.Email != "" {
		fmt.Fprintf(a.out, " <%s>", u.Email)
	}
	fmt.Fprintln(a.out)
	return nil
}

func (a *App) Users(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	list, err := a.auth.ListUsers(ctx)
	if err != nil {
		return err
	}

	for _, u := range list {
		admin := ""
		if u.IsAdmin {
			admin = " [admin]"
		}
		fmt.Fprintf(a.out, "%4d  %-20s %s%s\n", u.ID, u.UserName, u.CreatedAt.Format("2006-01-02"), admin)
	}
	fmt.Fprintf(a.out, "%d user(s)\n", len(list))
	return nil
}
