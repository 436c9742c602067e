package cli

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jimalvess/diario-cli/internal/client/client"
	"github.com/jimalvess/diario-cli/internal/client/models"
	"github.com/jimalvess/diario-cli/internal/testutil/fakeapi"
)

type fakeExec struct {
	loggedIn bool
	err      error

	calls []string
}

func (f *fakeExec) record(format string, args ...any) error {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	return f.err
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Login(_ context.Context, u string) error {
	f.loggedIn = true
	return f.record("login %s", u)
}
func (f *fakeExec) Register(_ context.Context, u string) error { return f.record("register %s", u) }
func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) ForgotPassword(_ context.Context, e string) error { return f.record("forgot %s", e) }
func (f *fakeExec) ResetPassword(_ context.Context, l string) error  { return f.record("reset %s", l) }
func (f *fakeExec) List(_ context.Context, sort string, page int) error {
	return f.record("list %s %d", sort, page)
}
func (f *fakeExec) Show(_ context.Context, id int64) error { return f.record("show %d", id) }
func (f *fakeExec) NewEntry(_ context.Context, form entryForm) error {
	return f.record("new %v", form.empty())
}
func (f *fakeExec) EditEntry(_ context.Context, id int64, form entryForm) error {
	return f.record("edit %d %v", id, form.empty())
}
func (f *fakeExec) Delete(_ context.Context, id int64) error { return f.record("delete %d", id) }
func (f *fakeExec) Download(_ context.Context, e, a int64) error {
	return f.record("download %d %d", e, a)
}

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	origPrintln, origPrint := printlnFn, printFn
	var lines []string
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	printFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn, printFn = origPrintln, origPrint })
	return &lines
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	out := captureOutput(t)
	input := strings.Join([]string{
		"help",
		"login ana",
		"help",
		"",
		"list desc 2",
		"l",
		"show 12",
		"new",
		"edit 12",
		"delete 12",
		"download 12 5",
		"forgot ana@example.com",
		"reset tok",
		"logout",
		"exit",
		"list",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, rdr(input))

	assert.Equal(t, []string{
		"login ana",
		"list desc 2",
		"list  1",
		"show 12",
		"new true",
		"edit 12 true",
		"delete 12",
		"download 12 5",
		"forgot ana@example.com",
		"reset tok",
		"logout",
	}, exec.calls)
	assert.Equal(t, helpLoggedOut, (*out)[0])
	assert.Equal(t, helpLoggedIn, (*out)[1])
	assert.Equal(t, "Bye!", (*out)[len(*out)-1])
}

func TestRunREPL_UsageErrorsKeepRunning(t *testing.T) {
	out := captureOutput(t)
	input := "show\nshow abc\ndownload 1\nfoobar\nquit\n"

	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "s" }, rdr(input))

	assert.Empty(t, exec.calls)
	require.Len(t, *out, 5)
	assert.Contains(t, (*out)[0], "usage: show <id>")
	assert.Contains(t, (*out)[1], "invalid id")
	assert.Contains(t, (*out)[2], "usage: download <entry-id> <attachment-id>")
	assert.Contains(t, (*out)[3], `unknown command "foobar"`)
}

func TestRunREPL_CommandErrorsArePrintedByKind(t *testing.T) {
	out := captureOutput(t)
	exec := &fakeExec{loggedIn: true, err: fmt.Errorf("get entry 3: %w", client.ErrForbidden)}

	runREPL(context.Background(), exec, func() string { return "" }, rdr("show 3\n"))

	require.Len(t, *out, 1)
	assert.Contains(t, (*out)[0], "You do not have permission to do that.")
}

func TestRunREPL_AgainstBackend(t *testing.T) {
	out := captureOutput(t)
	api := fakeapi.New(t)
	uid := api.AddUser("ana", "secret")
	api.SeedEntry(uid, models.Entry{Title: "Hidden until login", Body: "b"})

	input := strings.Join([]string{
		"list",
		"login ana",
		"secret",
		"list",
		"exit",
	}, "\n") + "\n"
	app, view := newTestApp(t, testConfig(t, api), input)

	runREPL(context.Background(), app, app.getStatus, app.reader)

	got := view.String()
	loginHint := strings.Index(got, "You are not logged in")
	title := strings.Index(got, "Hidden until login")
	require.GreaterOrEqual(t, loginHint, 0)
	require.Greater(t, title, loginHint)
	assert.Equal(t, 1, api.Count("GET", entriesPath))
	assert.Equal(t, "(ana)", app.getStatus())
	assert.Equal(t, "Bye!", (*out)[len(*out)-1])
}
