package cli

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strconv"

	"github.com/jimalvess/diario-cli/internal/client/client"
	"github.com/jimalvess/diario-cli/internal/client/models"
	"github.com/jimalvess/diario-cli/internal/client/router"
	"github.com/jimalvess/diario-cli/internal/client/services"
	"github.com/jimalvess/diario-cli/internal/client/views"
	"github.com/jimalvess/diario-cli/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

// entryForm carries the non-interactive editor input of "new" and "edit".
type entryForm struct {
	Title     *string
	Body      *string
	Files     []string
	RemoveIDs []int64
}

func (f entryForm) empty() bool {
	return f.Title == nil && f.Body == nil && len(f.Files) == 0 && len(f.RemoveIDs) == 0
}

// Login prompts for credentials unless username is given and makes the
// returned token the current session. The password is wiped afterwards.
func (a *App) Login(ctx context.Context, username string) error {
	username, password, err := a.credentials(username)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.authService.Login(ctx, username, password); err != nil {
		a.log.Warn(ctx, "login unsuccessful", "username", username, "error", err)
		return err
	}
	return nil
}

// Register creates an account. The user still has to log in.
func (a *App) Register(ctx context.Context, username string) error {
	username, password, err := a.credentials(username)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Register(ctx, username, password); err != nil {
		return err
	}
	a.r.success("Account created. Log in with 'login'.")
	return nil
}

func (a *App) credentials(username string) (string, []byte, error) {
	var err error
	if username == "" {
		if username, err = getSimpleText(a.reader, "Username", a.r.out); err != nil {
			return "", nil, err
		}
	}
	password, err := getPassword(a.reader, "Password", a.r.out)
	if err != nil {
		return "", nil, err
	}
	return username, password, nil
}

// Logout forgets the session locally. The backend keeps no session state.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	a.r.success("Logged out.")
	return nil
}

// ForgotPassword asks the backend to e-mail a reset link.
func (a *App) ForgotPassword(ctx context.Context, email string) error {
	var err error
	if email == "" {
		if email, err = getSimpleText(a.reader, "E-mail address", a.r.out); err != nil {
			return err
		}
	}
	if err := a.authService.RequestPasswordReset(ctx, email); err != nil {
		return err
	}
	a.r.success("If the address is registered, a reset link is on its way.")
	return nil
}

// ResetPassword opens the reset view for the token of an e-mailed link.
func (a *App) ResetPassword(ctx context.Context, link string) error {
	var err error
	if link == "" {
		if link, err = getSimpleText(a.reader, "Paste the reset link", a.r.out); err != nil {
			return err
		}
	}
	token, err := services.ParseResetToken(link)
	if err != nil {
		return err
	}
	return a.router.Navigate(ctx, router.PathResetPassword+"?"+url.Values{"token": {token}}.Encode())
}

// List shows page of the entries ordered by sort ("", asc or desc).
func (a *App) List(ctx context.Context, sort string, page int) error {
	if _, err := views.ParseSortOrder(sort); err != nil {
		return fmt.Errorf("%w: %v", client.ErrValidation, err)
	}
	q := url.Values{}
	if sort != "" {
		q.Set("sort", sort)
	}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	target := router.PathEntries
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	return a.router.Navigate(ctx, target)
}

func (a *App) Show(ctx context.Context, id int64) error {
	return a.router.Navigate(ctx, entryPath(id))
}

// NewEntry opens the creation view. With no form input the interactive
// editor runs; otherwise the form is applied and submitted once.
func (a *App) NewEntry(ctx context.Context, form entryForm) error {
	if err := a.router.Navigate(ctx, router.PathNewEntry); err != nil {
		return err
	}
	return a.runEditor(ctx, form)
}

// EditEntry opens the editor on entry id, like NewEntry. An entry that cannot
// be loaded sends the user back to the list.
func (a *App) EditEntry(ctx context.Context, id int64, form entryForm) error {
	if err := a.router.Navigate(ctx, fmt.Sprintf("/entradas/editar/%d", id)); err != nil {
		a.backToList(ctx)
		return err
	}
	return a.runEditor(ctx, form)
}

// runEditor drives the open editor. Leaving it by saving or discarding
// returns to the list; a failed one-shot submit stays on the form route.
func (a *App) runEditor(ctx context.Context, form entryForm) error {
	s := a.currentEditor()
	if s == nil {
		// The guard redirected to login instead of opening the editor.
		return nil
	}
	var err error
	if form.empty() {
		err = a.editLoop(ctx, s)
	} else {
		err = a.applyAndSubmit(ctx, s, form)
	}
	a.setEditor(nil)
	if err != nil {
		return err
	}
	a.backToList(ctx)
	return nil
}

// backToList shows the entry list after the editor or detail view is done.
// The outcome of the preceding action is already reported, so a list that
// fails to load is only logged.
func (a *App) backToList(ctx context.Context) {
	if err := a.router.Navigate(ctx, router.PathEntries); err != nil {
		a.log.Warn(ctx, "failed to show entry list", "error", err)
	}
}

// Delete removes an entry. A row of the loaded list is removed optimistically
// from the list view; otherwise the entry is loaded and deleted from the
// detail view.
func (a *App) Delete(ctx context.Context, id int64) error {
	if slices.ContainsFunc(a.list.Rows(), func(e models.Entry) bool { return e.ID == id }) {
		if err := a.list.Delete(ctx, id); err != nil {
			return err
		}
		a.r.success(fmt.Sprintf("Entry %d deleted.", id))
		return nil
	}

	if err := a.loadDetail(ctx, id); err != nil {
		return err
	}
	if err := a.detail.Delete(ctx); err != nil {
		return err
	}
	a.r.success(fmt.Sprintf("Entry %d deleted.", id))
	a.backToList(ctx)
	return nil
}

// Download saves one attachment of entryID under the configured download
// directory.
func (a *App) Download(ctx context.Context, entryID, attachmentID int64) error {
	if err := a.loadDetail(ctx, entryID); err != nil {
		return err
	}
	att, ok := a.detail.Attachment(attachmentID)
	if !ok {
		return fmt.Errorf("attachment %d of entry %d: %w", attachmentID, entryID, client.ErrNotFound)
	}
	path, err := a.attachmentService.SaveTo(ctx, att.Attachment, a.config.DownloadDir)
	if err != nil {
		return err
	}
	a.r.success("Saved " + att.DisplayName() + " to " + path)
	return nil
}

func (a *App) loadDetail(ctx context.Context, id int64) error {
	if e, ok := a.detail.Entry(); ok && e.ID == id {
		return nil
	}
	_, err := a.detail.Load(ctx, id)
	return err
}

func entryPath(id int64) string {
	return "/entradas/" + strconv.FormatInt(id, 10)
}

// parseID reads a user supplied id. A malformed id is a validation failure.
func parseID(s string) (int64, error) {
	id, err := common.ParseID(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", client.ErrValidation, err)
	}
	return id, nil
}

// usageError reports a malformed REPL command line.
type usageError string

func (u usageError) Error() string { return "usage: " + string(u) }

func (u usageError) Unwrap() error { return client.ErrValidation }
