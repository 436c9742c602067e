package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jimalvess/diario-cli/internal/client/client"
	"github.com/jimalvess/diario-cli/internal/client/models"
	"github.com/jimalvess/diario-cli/internal/client/router"
	"github.com/jimalvess/diario-cli/internal/client/session"
	"github.com/jimalvess/diario-cli/internal/testutil/fakeapi"
)

// fakeAuthAPI records calls for tests that must prove nothing was sent.
type fakeAuthAPI struct {
	loginRes models.LoginResult
	err      error
	calls    int
}

func (f *fakeAuthAPI) Login(context.Context, models.Credentials) (models.LoginResult, error) {
	f.calls++
	return f.loginRes, f.err
}

func (f *fakeAuthAPI) Register(context.Context, models.Credentials) error {
	f.calls++
	return f.err
}

func (f *fakeAuthAPI) ForgotPassword(context.Context, string) error {
	f.calls++
	return f.err
}

func (f *fakeAuthAPI) ResetPassword(context.Context, models.ResetPasswordRequest) error {
	f.calls++
	return f.err
}

func persistentStore(t *testing.T) *session.Store {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return session.NewStore(session.NewSQLitePersistence(db), nil)
}

func TestLogin_PersistsSessionAndUnlocksGuardedRoutes(t *testing.T) {
	api := fakeapi.New(t)
	uid := api.AddUser("ana", "secret")
	store := persistentStore(t)
	c := client.NewHTTPClient(api.URL(), store)
	svc := NewAuthService(c, store, nil)
	ctx := context.Background()

	r := router.New(nil)
	var shown []string
	r.Handle(router.PathLogin, func(context.Context, *router.Request) error {
		shown = append(shown, "login")
		return nil
	})
	r.Handle(router.PathEntries, func(ctx context.Context, _ *router.Request) error {
		if _, err := c.ListEntries(ctx); err != nil {
			return err
		}
		shown = append(shown, "entries")
		return nil
	}, router.Guard(store))

	require.NoError(t, r.Navigate(ctx, router.PathEntries))
	assert.Equal(t, []string{"login"}, shown)

	var notified []session.Session
	store.Subscribe(func(s session.Session) { notified = append(notified, s) })

	sess, err := svc.Login(ctx, "ana", []byte("secret"))
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "1", sess.UserID)
	assert.Equal(t, int64(1), uid)
	assert.Equal(t, "ana", sess.Subject())

	assert.Equal(t, sess, store.Current())
	require.Len(t, notified, 1)

	require.NoError(t, r.Navigate(ctx, router.PathEntries))
	assert.Equal(t, []string{"login", "entries"}, shown)
	assert.Equal(t, router.PathEntries, r.Current())
}

func TestLogin_WrongPasswordLeavesStoreEmpty(t *testing.T) {
	api := fakeapi.New(t)
	api.AddUser("ana", "secret")
	store := session.NewStore(nil, nil)
	svc := NewAuthService(client.NewHTTPClient(api.URL(), store), store, nil)

	_, err := svc.Login(context.Background(), "ana", []byte("nope"))
	assert.ErrorIs(t, err, client.ErrInvalidCredentials)
	assert.False(t, store.IsAuthenticated())
}

func TestLogin_ValidationNeverReachesNetwork(t *testing.T) {
	api := &fakeAuthAPI{}
	svc := NewAuthService(api, session.NewStore(nil, nil), nil)

	_, err := svc.Login(context.Background(), " ", []byte("pw"))
	assert.ErrorIs(t, err, client.ErrValidation)
	_, err = svc.Login(context.Background(), "ana", nil)
	assert.ErrorIs(t, err, client.ErrValidation)
	assert.ErrorIs(t, svc.Register(context.Background(), "", []byte("pw")), client.ErrValidation)
	assert.Zero(t, api.calls)
}

func TestRegister_DoesNotLogIn(t *testing.T) {
	api := fakeapi.New(t)
	store := session.NewStore(nil, nil)
	svc := NewAuthService(client.NewHTTPClient(api.URL(), store), store, nil)

	require.NoError(t, svc.Register(context.Background(), "bob", []byte("pw")))
	assert.False(t, store.IsAuthenticated())
	assert.Equal(t, "pw", api.Password("bob"))
}

func TestRequestPasswordReset(t *testing.T) {
	api := fakeapi.New(t)
	svc := NewAuthService(client.NewHTTPClient(api.URL(), nil), session.NewStore(nil, nil), nil)

	require.NoError(t, svc.RequestPasswordReset(context.Background(), " ana@example.com "))
	assert.Equal(t, []string{"ana@example.com"}, api.ResetEmails())

	assert.ErrorIs(t, svc.RequestPasswordReset(context.Background(), "not-an-email"), client.ErrValidation)
}

func TestResetPassword(t *testing.T) {
	api := &fakeAuthAPI{}
	svc := NewAuthService(api, session.NewStore(nil, nil), nil)
	ctx := context.Background()

	assert.ErrorIs(t, svc.ResetPassword(ctx, "", []byte("a"), []byte("a")), ErrInvalidResetLink)
	assert.ErrorIs(t, svc.ResetPassword(ctx, "tok", nil, nil), client.ErrValidation)

	err := svc.ResetPassword(ctx, "tok", []byte("abc"), []byte("abc "))
	assert.ErrorIs(t, err, ErrPasswordMismatch)
	assert.ErrorIs(t, err, client.ErrValidation)
	assert.Zero(t, api.calls)

	require.NoError(t, svc.ResetPassword(ctx, "tok", []byte("abc"), []byte("abc")))
	assert.Equal(t, 1, api.calls)
}

func TestResetPassword_AgainstBackend(t *testing.T) {
	api := fakeapi.New(t)
	api.AddUser("ana", "old")
	api.IssueResetToken("ana", "tok-9")
	svc := NewAuthService(client.NewHTTPClient(api.URL(), nil), session.NewStore(nil, nil), nil)

	require.NoError(t, svc.ResetPassword(context.Background(), "tok-9", []byte("new"), []byte("new")))
	assert.Equal(t, "new", api.Password("ana"))
}

func TestLogout(t *testing.T) {
	store := persistentStore(t)
	require.NoError(t, store.Login(context.Background(), session.Session{Token: "t", UserID: "1"}))
	svc := NewAuthService(&fakeAuthAPI{}, store, nil)

	require.NoError(t, svc.Logout(context.Background()))
	assert.False(t, store.IsAuthenticated())
}

func TestLogin_StoreFailureIsReturned(t *testing.T) {
	boom := errors.New("boom")
	api := &fakeAuthAPI{err: boom}
	store := session.NewStore(nil, nil)
	_, err := NewAuthService(api, store, nil).Login(context.Background(), "a", []byte("b"))
	assert.ErrorIs(t, err, boom)

	api = &fakeAuthAPI{loginRes: models.LoginResult{}}
	_, err = NewAuthService(api, store, nil).Login(context.Background(), "a", []byte("b"))
	assert.ErrorIs(t, err, session.ErrEmptyToken)
}

func TestParseResetToken(t *testing.T) {
	cases := map[string]string{
		"http://localhost:3000/redefinir-senha?token=abc-123": "abc-123",
		"?token=abc":  "abc",
		"token=abc":   "abc",
		"  abc-123  ": "abc-123",
		"/redefinir-senha?token=a%2Bb": "a+b",
	}
	for in, want := range cases {
		got, err := ParseResetToken(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "http://localhost:3000/redefinir-senha", "?other=1"} {
		_, err := ParseResetToken(bad)
		assert.ErrorIs(t, err, ErrInvalidResetLink, bad)
	}
}
