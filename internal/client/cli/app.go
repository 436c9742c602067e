package cli

import (
	"bufio"
	"context"
	"database/sql"
	"io"
	"sync"

	"github.com/jimalvess/diario-cli/internal/client/client"
	"github.com/jimalvess/diario-cli/internal/client/config"
	"github.com/jimalvess/diario-cli/internal/client/editor"
	"github.com/jimalvess/diario-cli/internal/client/router"
	"github.com/jimalvess/diario-cli/internal/client/services"
	"github.com/jimalvess/diario-cli/internal/client/session"
	"github.com/jimalvess/diario-cli/internal/client/views"
	"github.com/jimalvess/diario-cli/internal/logging"
)

// App wires the client components behind the CLI: one session store shared
// by the HTTP client, the router guard and the prompt.
type App struct {
	config *config.Config
	log    logging.Logger
	reader *bufio.Reader
	r      *renderer

	db     *sql.DB
	store  *session.Store
	api    *client.HTTPClient
	router *router.Router

	list   *views.EntryList
	detail *views.EntryDetail

	authService       services.AuthService
	attachmentService services.AttachmentService

	mu       sync.Mutex
	userName string
	editing  *editor.Session

	unsubscribe func()
}

// NewApp opens the session database, restores the saved session and wires
// the client against c.APIURL. Input is read from in and views are written
// to out.
func NewApp(ctx context.Context, c *config.Config, in io.Reader, out io.Writer, log logging.Logger) (*App, error) {
	if log == nil {
		log = logging.Discard()
	}

	db, err := client.InitDatabase(ctx, c.SessionDB)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	store := session.NewStore(session.NewSQLitePersistence(db), log)
	if err := store.Load(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	api := client.NewHTTPClient(c.APIURL, store,
		client.WithTimeout(c.RequestTimeout),
		client.WithLogger(log),
	)

	a := &App{
		config:            c,
		log:               log.With("component", "cli"),
		reader:            bufio.NewReader(in),
		r:                 newRenderer(out),
		db:                db,
		store:             store,
		api:               api,
		router:            router.New(log),
		list:              views.NewEntryList(api, log),
		detail:            views.NewEntryDetail(api, log),
		authService:       services.NewAuthService(api, store, log),
		attachmentService: services.NewAttachmentService(api, c.AttachmentCacheSize, c.AttachmentCacheTTL, log),
		userName:          store.Current().Subject(),
	}
	a.routes()
	a.unsubscribe = store.Subscribe(a.onSessionChange)
	return a, nil
}

// Close releases the session database.
func (a *App) Close() error {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	return a.db.Close()
}

func (a *App) isLoggedIn() bool {
	return a.store.IsAuthenticated()
}

// getStatus is the prompt label: the user name taken from the token, or
// nothing when logged out.
func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.userName == "" {
		return ""
	}
	return "(" + a.userName + ")"
}

// onSessionChange follows login and logout the way the web client did:
// the prompt label changes and navigation moves to home or login.
func (a *App) onSessionChange(s session.Session) {
	a.mu.Lock()
	a.userName = s.Subject()
	if !s.Valid() {
		a.editing = nil
	}
	a.mu.Unlock()

	target := router.PathHome
	if !s.Valid() {
		target = router.PathLogin
	}
	ctx := context.Background()
	if err := a.router.Navigate(ctx, target); err != nil {
		a.log.Warn(ctx, "navigation after session change failed", "to", target, "error", err)
	}
}

func (a *App) editorOptions() []editor.Option {
	return []editor.Option{
		editor.WithMaxFileSize(a.config.MaxFileSize),
		editor.WithMaxMediaItems(a.config.MaxMediaItems),
		editor.WithLogger(a.log),
	}
}

func (a *App) currentEditor() *editor.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.editing
}

func (a *App) setEditor(s *editor.Session) {
	a.mu.Lock()
	a.editing = s
	a.mu.Unlock()
}
