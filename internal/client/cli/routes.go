package cli

import (
	"context"
	"strconv"

	"github.com/jimalvess/diario-cli/internal/client/editor"
	"github.com/jimalvess/diario-cli/internal/client/router"
	"github.com/jimalvess/diario-cli/internal/client/services"
	"github.com/jimalvess/diario-cli/internal/client/views"
	"github.com/jimalvess/diario-cli/internal/common"
)

func (a *App) routes() {
	guard := router.Guard(a.store)

	a.router.Handle(router.PathRoot, a.rootView)
	a.router.Handle(router.PathLogin, a.loginView)
	a.router.Handle(router.PathResetPassword, a.resetPasswordView)
	a.router.Handle(router.PathHome, a.homeView, guard)
	a.router.Handle(router.PathEntries, a.listView, guard)
	a.router.Handle(router.PathNewEntry, a.newEntryView, guard)
	a.router.Handle(router.PathEntry, a.detailView, guard)
	a.router.Handle(router.PathEditEntry, a.editEntryView, guard)
}

func (a *App) rootView(_ context.Context, _ *router.Request) error {
	if a.isLoggedIn() {
		return router.RedirectTo(router.PathHome)
	}
	return router.RedirectTo(router.PathLogin)
}

func (a *App) loginView(_ context.Context, _ *router.Request) error {
	if a.isLoggedIn() {
		a.r.println(mutedStyle.Render("Logged in as " + a.store.Current().Subject() + "."))
		return nil
	}
	a.r.println("You are not logged in. Use 'login', or 'register' to create an account.")
	return nil
}

func (a *App) homeView(_ context.Context, _ *router.Request) error {
	name := a.store.Current().Subject()
	if name == "" {
		name = "back"
	}
	a.r.println(titleStyle.Render("Welcome, " + name + "!"))
	a.r.println("Use 'list' to see your entries or 'new' to write one.")
	return nil
}

// resetPasswordView completes a reset started from an e-mailed link. The
// token travels in the query string, as in the link itself.
func (a *App) resetPasswordView(ctx context.Context, req *router.Request) error {
	token := req.Query.Get("token")
	if token == "" {
		return services.ErrInvalidResetLink
	}

	password, err := GetPassword(a.reader, "New password", a.r.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirmation, err := GetPassword(a.reader, "Confirm new password", a.r.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirmation)

	if err := a.authService.ResetPassword(ctx, token, password, confirmation); err != nil {
		return err
	}
	a.r.success("Password changed. Log in with the new password.")
	return router.RedirectTo(router.PathLogin)
}

// listView loads the entries and shows one page. Query parameters:
// sort (server|asc|desc) and page (1-based).
func (a *App) listView(ctx context.Context, req *router.Request) error {
	order, err := views.ParseSortOrder(req.Query.Get("sort"))
	if err != nil {
		return err
	}
	page := 1
	if p := req.Query.Get("page"); p != "" {
		if page, err = strconv.Atoi(p); err != nil {
			page = 1
		}
	}

	if err := a.list.Load(ctx); err != nil {
		return err
	}
	a.list.SortByDate(order)
	rows, info := a.list.Page(page, views.DefaultPageSize)
	a.r.entryTable(rows, info)
	return nil
}

func (a *App) detailView(ctx context.Context, req *router.Request) error {
	id, err := req.ParamID("id")
	if err != nil {
		return err
	}
	e, err := a.detail.Load(ctx, id)
	if err != nil {
		return err
	}
	a.r.entry(e, a.detail.Attachments())
	return nil
}

func (a *App) newEntryView(_ context.Context, _ *router.Request) error {
	a.setEditor(editor.NewCreateSession(a.api, a.editorOptions()...))
	return nil
}

// editEntryView opens an editor on the stored entry. A failed load leaves no
// editor open.
func (a *App) editEntryView(ctx context.Context, req *router.Request) error {
	id, err := req.ParamID("id")
	if err != nil {
		return err
	}
	s := editor.NewEditSession(a.api, id, a.editorOptions()...)
	if err := s.Load(ctx); err != nil {
		a.setEditor(nil)
		return err
	}
	a.setEditor(s)
	return nil
}
