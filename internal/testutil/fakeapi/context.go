package fakeapi

import "context"

type ctxKey int

const (
	userKey ctxKey = iota
	formKey
)

func withUser(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userKey, id)
}

func userFrom(ctx context.Context) int64 {
	id, _ := ctx.Value(userKey).(int64)
	return id
}

func withForm(ctx context.Context, f *Form) context.Context {
	return context.WithValue(ctx, formKey, f)
}

func formFrom(ctx context.Context) *Form {
	f, _ := ctx.Value(formKey).(*Form)
	return f
}
