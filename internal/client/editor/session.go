package editor

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/jimalvess/diario-cli/internal/client/client"
	"github.com/jimalvess/diario-cli/internal/client/models"
	"github.com/jimalvess/diario-cli/internal/logging"
)

const (
	DefaultMaxFileSize   int64 = 20 * 1024 * 1024
	DefaultMaxMediaItems       = 8
)

// API is the part of the backend the editor needs.
type API interface {
	BaseURL() string
	GetEntry(ctx context.Context, id int64) (models.Entry, error)
	CreateEntry(ctx context.Context, form client.EntryForm) error
	UpdateEntry(ctx context.Context, id int64, form client.EntryForm) error
}

type Option func(*Session)

// WithMaxFileSize sets the size from which a staged file is rejected.
func WithMaxFileSize(n int64) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxFileSize = n
		}
	}
}

// WithMaxMediaItems sets the soft limit used by CanStageMore.
func WithMaxMediaItems(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxMediaItems = n
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(s *Session) { s.log = l }
}

// Session is one create or edit session of a diary entry.
type Session struct {
	mu sync.Mutex

	api     API
	mode    Mode
	entryID int64
	state   State

	title string
	body  string

	// existing is the attachment list as loaded; it never changes.
	existing []models.AttachmentView
	removed  map[int64]struct{}
	pending  []models.PendingUpload
	previews map[string]Preview

	maxFileSize   int64
	maxMediaItems int
	log           logging.Logger
}

func newSession(api API, mode Mode, opts ...Option) *Session {
	s := &Session{
		api:           api,
		mode:          mode,
		removed:       make(map[int64]struct{}),
		previews:      make(map[string]Preview),
		maxFileSize:   DefaultMaxFileSize,
		maxMediaItems: DefaultMaxMediaItems,
		log:           logging.Discard(),
	}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.With("component", "editor", "mode", mode.String())
	return s
}

// NewEditSession starts editing entry id. Call Load before anything else.
func NewEditSession(api API, id int64, opts ...Option) *Session {
	s := newSession(api, ModeEdit, opts...)
	s.entryID = id
	s.state = StateLoading
	s.log = s.log.With("entry_id", id)
	return s
}

// NewCreateSession starts a new entry; it is Ready immediately.
func NewCreateSession(api API, opts ...Option) *Session {
	s := newSession(api, ModeCreate, opts...)
	s.state = StateReady
	return s
}

// Load fetches the entry being edited. Any failure, including not found and
// permission denied, moves the session to LoadFailed and is returned.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	if err := s.checkLocked(StateLoading); err != nil {
		s.mu.Unlock()
		return err
	}
	id := s.entryID
	s.mu.Unlock()

	e, err := s.api.GetEntry(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateLoadFailed
		s.log.Warn(ctx, "load failed", "error", err)
		return err
	}
	s.title = e.Title
	s.body = e.Body
	s.existing = e.AttachmentViews(s.api.BaseURL())
	s.state = StateReady
	s.log.Debug(ctx, "entry loaded", "attachments", len(s.existing))
	return nil
}

func (s *Session) SetTitle(title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLocked(StateReady); err != nil {
		return err
	}
	s.title = title
	return nil
}

func (s *Session) SetBody(body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLocked(StateReady); err != nil {
		return err
	}
	s.body = body
	return nil
}

// StageFiles appends files to the pending uploads in order. Each file of the
// max file size or more is left out and reported by one *FileTooLargeError;
// the rest of the batch is still accepted. The soft media limit is not
// enforced here (see CanStageMore).
//
// When the session does not accept edits the whole batch is refused and the
// only element returned is the state error.
func (s *Session) StageFiles(files ...models.PendingUpload) []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLocked(StateReady); err != nil {
		return []error{err}
	}

	var rejected []error
	for _, f := range files {
		if f.Size >= s.maxFileSize {
			rejected = append(rejected, &FileTooLargeError{Name: f.Name, Size: f.Size, Limit: s.maxFileSize})
			continue
		}
		s.pending = append(s.pending, f)
	}
	return rejected
}

// CanStageMore reports whether the visible media count is under the soft
// limit. The UI disables staging when it is false.
func (s *Session) CanStageMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mediaCountLocked() < s.maxMediaItems
}

// UnstageFile drops a pending upload before submit.
func (s *Session) UnstageFile(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLocked(StateReady); err != nil {
		return err
	}
	i := slices.IndexFunc(s.pending, func(p models.PendingUpload) bool { return p.ID == id })
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownUpload, id)
	}
	s.pending = slices.Delete(s.pending, i, i+1)
	delete(s.previews, id)
	return nil
}

// MarkForRemoval hides a loaded attachment and schedules its removal on
// Submit. Repeated calls are no-ops. Ids that were not loaded are rejected
// and leave the removal set untouched.
func (s *Session) MarkForRemoval(attachmentID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLocked(StateReady); err != nil {
		return err
	}
	if !slices.ContainsFunc(s.existing, func(a models.AttachmentView) bool { return a.ID == attachmentID }) {
		return fmt.Errorf("%w: %d", ErrUnknownAttachment, attachmentID)
	}
	s.removed[attachmentID] = struct{}{}
	return nil
}

// Preview returns what the UI shows for item. For a staged file it reads the
// content once and memoizes the result; for a stored attachment it returns
// its server URL. Neither changes the item.
func (s *Session) Preview(ctx context.Context, item Item) (Preview, error) {
	switch it := item.(type) {
	case ExistingItem:
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, a := range s.visibleLocked() {
			if a.ID == int64(it) {
				return Preview{Name: a.DisplayName(), Kind: a.Kind(), URL: a.URL}, nil
			}
		}
		return Preview{}, fmt.Errorf("%w: %d", ErrUnknownAttachment, int64(it))

	case PendingItem:
		return s.previewPending(ctx, string(it))

	default:
		return Preview{}, fmt.Errorf("unsupported preview item %T", item)
	}
}

func (s *Session) previewPending(ctx context.Context, id string) (Preview, error) {
	s.mu.Lock()
	if pv, ok := s.previews[id]; ok {
		s.mu.Unlock()
		return pv, nil
	}
	i := slices.IndexFunc(s.pending, func(p models.PendingUpload) bool { return p.ID == id })
	if i < 0 {
		s.mu.Unlock()
		return Preview{}, fmt.Errorf("%w: %s", ErrUnknownUpload, id)
	}
	p := s.pending[i]
	s.mu.Unlock()

	rc, err := p.Open()
	if err != nil {
		return Preview{}, fmt.Errorf("preview %s: %w", p.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return Preview{}, fmt.Errorf("preview %s: %w", p.Name, err)
	}
	pv := buildPendingPreview(p, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.previews[id]; ok {
		return existing, nil
	}
	// The upload may have been unstaged while its content was read.
	if slices.ContainsFunc(s.pending, func(q models.PendingUpload) bool { return q.ID == id }) {
		s.previews[id] = pv
	}
	s.log.Debug(ctx, "preview computed", "name", p.Name, "bytes", len(data))
	return pv, nil
}

// Submit validates the form and sends one create or update request with the
// title, the body, every pending upload and, when editing, every id in the
// removal set. On success the session closes and pending uploads are
// dropped; on failure everything is kept for a retry.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	if err := s.checkLocked(StateReady); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := validate(s.title, s.body); err != nil {
		s.mu.Unlock()
		return err
	}
	form := client.EntryForm{
		Title: s.title,
		Body:  s.body,
		Files: slices.Clone(s.pending),
	}
	if s.mode == ModeEdit {
		form.RemoveIDs = s.removalSetLocked()
	}
	mode, id := s.mode, s.entryID
	s.state = StateSubmitting
	s.mu.Unlock()

	var err error
	if mode == ModeEdit {
		err = s.api.UpdateEntry(ctx, id, form)
	} else {
		err = s.api.CreateEntry(ctx, form)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateReady
		s.log.Warn(ctx, "submit failed", "error", err, "kind", client.KindOf(err).String())
		return err
	}
	s.state = StateClosed
	s.pending = nil
	s.previews = make(map[string]Preview)
	s.log.Info(ctx, "entry saved", "files", len(form.Files), "removed", len(form.RemoveIDs))
	return nil
}

// Snapshot is a read-only copy of the session for rendering.
type Snapshot struct {
	Mode         Mode
	EntryID      int64
	State        State
	Title        string
	Body         string
	Visible      []models.AttachmentView
	Pending      []models.PendingUpload
	Removed      []int64
	CanStageMore bool
	MaxFileSize  int64
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Mode:         s.mode,
		EntryID:      s.entryID,
		State:        s.state,
		Title:        s.title,
		Body:         s.body,
		Visible:      s.visibleLocked(),
		Pending:      slices.Clone(s.pending),
		Removed:      s.removalSetLocked(),
		CanStageMore: s.mediaCountLocked() < s.maxMediaItems,
		MaxFileSize:  s.maxFileSize,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// checkLocked maps the current state to the error of an operation that
// requires want.
func (s *Session) checkLocked(want State) error {
	switch {
	case s.state == want:
		return nil
	case s.state.Terminal():
		return ErrSessionClosed
	case s.state == StateSubmitting:
		return ErrBusy
	default:
		return fmt.Errorf("%w: state %s", ErrNotReady, s.state)
	}
}

func (s *Session) visibleLocked() []models.AttachmentView {
	out := make([]models.AttachmentView, 0, len(s.existing))
	for _, a := range s.existing {
		if _, gone := s.removed[a.ID]; !gone {
			out = append(out, a)
		}
	}
	return out
}

func (s *Session) removalSetLocked() []int64 {
	ids := make([]int64, 0, len(s.removed))
	for id := range s.removed {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (s *Session) mediaCountLocked() int {
	return len(s.existing) - len(s.removed) + len(s.pending)
}

func validate(title, body string) error {
	var missing []string
	if strings.TrimSpace(title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(body) == "" {
		missing = append(missing, "body")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", client.ErrValidation, strings.Join(missing, " and "))
	}
	return nil
}
