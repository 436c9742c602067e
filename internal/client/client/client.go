package client

import (
	"context"

	"github.com/jimalvess/diario-cli/internal/client/models"
)

// TokenSource supplies the bearer token for authenticated requests.
type TokenSource interface {
	Token() string
}

// EntryForm is the content of a create or update request.
type EntryForm struct {
	Title string
	Body  string
	// Files are sent as "arquivos" on create and "novosArquivos" on update.
	Files []models.PendingUpload
	// RemoveIDs are sent as "idsMidiasRemover"; ignored on create.
	RemoveIDs []int64
}

// Client is the contract of the diary backend.
type Client interface {
	BaseURL() string

	Login(ctx context.Context, creds models.Credentials) (models.LoginResult, error)
	Register(ctx context.Context, creds models.Credentials) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error

	ListEntries(ctx context.Context) ([]models.Entry, error)
	GetEntry(ctx context.Context, id int64) (models.Entry, error)
	CreateEntry(ctx context.Context, form EntryForm) error
	UpdateEntry(ctx context.Context, id int64, form EntryForm) error
	DeleteEntry(ctx context.Context, id int64) error

	// FetchAttachment returns the raw bytes and content type of a stored file.
	FetchAttachment(ctx context.Context, fileName string) ([]byte, string, error)
}
