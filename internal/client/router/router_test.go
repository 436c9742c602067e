package router

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth bool

func (f fakeAuth) IsAuthenticated() bool { return bool(f) }

type calls []string

func (c *calls) handler(name string) Handler {
	return func(_ context.Context, _ *Request) error {
		*c = append(*c, name)
		return nil
	}
}

func TestNavigate_StaticBeatsParam(t *testing.T) {
	var got calls
	r := New(nil)
	r.Handle(PathEntry, got.handler("show"))
	r.Handle(PathNewEntry, got.handler("new"))
	r.Handle(PathEditEntry, got.handler("edit"))

	ctx := context.Background()
	require.NoError(t, r.Navigate(ctx, "/entradas/nova"))
	require.NoError(t, r.Navigate(ctx, "/entradas/42"))
	require.NoError(t, r.Navigate(ctx, "/entradas/editar/42/"))

	assert.Equal(t, calls{"new", "show", "edit"}, got)
	assert.Equal(t, "/entradas/editar/42", r.Current())
}

func TestNavigate_ParamsAndQuery(t *testing.T) {
	r := New(nil)
	var req *Request
	r.Handle(PathEntry, func(_ context.Context, got *Request) error {
		req = got
		return nil
	})
	r.Handle(PathResetPassword, func(_ context.Context, got *Request) error {
		req = got
		return nil
	})

	require.NoError(t, r.Navigate(context.Background(), "/entradas/42"))
	id, err := req.ParamID("id")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, PathEntry, req.Pattern)

	require.NoError(t, r.Navigate(context.Background(), "/redefinir-senha?token=abc"))
	assert.Equal(t, "abc", req.Query.Get("token"))
}

func TestNavigate_NoRoute(t *testing.T) {
	r := New(nil)
	err := r.Navigate(context.Background(), "/nope")
	assert.ErrorIs(t, err, ErrNoRoute)
	assert.Empty(t, r.Current())
}

func TestNavigate_RedirectLoopIsBounded(t *testing.T) {
	r := New(nil)
	r.Handle("/a", func(context.Context, *Request) error { return RedirectTo("/b") })
	r.Handle("/b", func(context.Context, *Request) error { return RedirectTo("/a") })

	assert.ErrorIs(t, r.Navigate(context.Background(), "/a"), ErrTooManyRedirects)
}

func TestNavigate_HandlerErrorIsReturned(t *testing.T) {
	boom := errors.New("boom")
	r := New(nil)
	r.Handle(PathHome, func(context.Context, *Request) error { return boom })

	assert.ErrorIs(t, r.Navigate(context.Background(), PathHome), boom)
	assert.Equal(t, PathHome, r.Current())
}

func TestGuard_RedirectsWithoutRunningHandler(t *testing.T) {
	var got calls
	fetched := 0
	r := New(nil)
	r.Handle(PathLogin, got.handler("login"))
	r.Handle(PathEntries, func(context.Context, *Request) error {
		fetched++
		return nil
	}, Guard(fakeAuth(false)))

	require.NoError(t, r.Navigate(context.Background(), PathEntries))

	assert.Zero(t, fetched)
	assert.Equal(t, calls{"login"}, got)
	assert.Equal(t, PathLogin, r.Current())
}

func TestGuard_PassesThroughWithToken(t *testing.T) {
	var got calls
	r := New(nil)
	r.Handle(PathLogin, got.handler("login"))
	r.Handle(PathEntries, got.handler("entries"), Guard(fakeAuth(true)))

	require.NoError(t, r.Navigate(context.Background(), PathEntries))
	assert.Equal(t, calls{"entries"}, got)
	assert.Equal(t, PathEntries, r.Current())
}

func TestMiddlewareOrder(t *testing.T) {
	var trace []string
	mw := func(name string) Middleware {
		return func(next Handler) Handler {
			return func(ctx context.Context, req *Request) error {
				trace = append(trace, name)
				return next(ctx, req)
			}
		}
	}
	r := New(nil)
	r.Handle(PathHome, func(context.Context, *Request) error {
		trace = append(trace, "handler")
		return nil
	}, mw("outer"), mw("inner"))

	require.NoError(t, r.Navigate(context.Background(), PathHome))
	assert.Equal(t, []string{"outer", "inner", "handler"}, trace)
}

func TestNavigate_RootAndMissingParam(t *testing.T) {
	var got calls
	r := New(nil)
	r.Handle(PathRoot, got.handler("root"))
	r.Handle(PathEntry, got.handler("show"))

	ctx := context.Background()
	require.NoError(t, r.Navigate(ctx, ""))
	assert.Equal(t, PathRoot, r.Current())

	assert.ErrorIs(t, r.Navigate(ctx, "/entradas/"), ErrNoRoute)
	assert.ErrorIs(t, r.Navigate(ctx, "/entradas/1/extra"), ErrNoRoute)
	assert.Equal(t, calls{"root"}, got)
}
