// Package fakeapi is an in-memory implementation of the diary backend's REST
// contract for tests. It records every request, keeps the multipart form of
// the last create or update, and can be told to answer a route with a fixed
// status.
package fakeapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jimalvess/diario-cli/internal/client/models"
)

// Request is a recorded incoming request.
type Request struct {
	Method        string
	Path          string
	Authorization string
	Form          *Form
}

// Form is a decoded multipart body.
type Form struct {
	Title     string
	Body      string
	Files     []File
	RemoveIDs []string
	// Fields lists every field name in the order the parts arrived.
	Fields []string
}

// File is one uploaded part.
type File struct {
	Field       string
	Name        string
	ContentType string
	Data        []byte
}

type user struct {
	id       int64
	username string
	password string
	email    string
}

type forced struct {
	status int
	body   string
}

type storedFile struct {
	data        []byte
	contentType string
}

// Server is the fake backend. Create it with New.
type Server struct {
	mu          sync.Mutex
	users       map[string]*user
	entries     map[int64]*models.Entry
	owners      map[int64]int64
	files       map[string]storedFile
	resetTokens map[string]string
	resetEmails []string
	requests    []Request
	forced      map[string]forced
	nextUser    int64
	nextEntry   int64
	nextMedia   int64

	// MaxUploadSize bounds multipart bodies; larger ones get 413.
	MaxUploadSize int64

	secret []byte
	srv    *httptest.Server
}

// New starts a fake backend that is closed when tb finishes.
func New(tb testing.TB) *Server {
	tb.Helper()
	s := &Server{
		users:         make(map[string]*user),
		entries:       make(map[int64]*models.Entry),
		owners:        make(map[int64]int64),
		files:         make(map[string]storedFile),
		resetTokens:   make(map[string]string),
		forced:        make(map[string]forced),
		MaxUploadSize: 64 << 20,
		secret:        []byte("fakeapi-secret"),
	}
	s.srv = httptest.NewServer(s.Handler())
	tb.Cleanup(s.srv.Close)
	return s
}

func (s *Server) URL() string { return s.srv.URL }

// Handler exposes the routes, e.g. for use with a custom httptest server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.limit, s.record, s.force)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", s.login)
		r.Post("/register", s.register)
		r.Post("/forgot-password", s.forgotPassword)
		r.Post("/redefinir-senha", s.resetPassword)
	})

	r.Route("/api/entradas", func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/", s.listEntries)
		r.Post("/", s.createEntry)
		r.Get("/arquivo/{filename}", s.getFile)
		r.Get("/{id}", s.getEntry)
		r.Put("/{id}", s.updateEntry)
		r.Delete("/{id}", s.deleteEntry)
	})
	return r
}

// AddUser registers a user directly and returns its id.
func (s *Server) AddUser(username, password string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(username, password)
}

func (s *Server) addUserLocked(username, password string) int64 {
	s.nextUser++
	s.users[username] = &user{id: s.nextUser, username: username, password: password, email: username + "@example.com"}
	return s.nextUser
}

// TokenFor issues a valid access token for an existing user.
func (s *Server) TokenFor(username string) string {
	s.mu.Lock()
	u, ok := s.users[username]
	s.mu.Unlock()
	if !ok {
		return ""
	}
	tok, err := generateToken(u.username, u.id, s.secret, time.Hour)
	if err != nil {
		panic(err)
	}
	return tok
}

// SeedEntry stores e for userID. A zero e.ID is assigned; attachment ids are
// kept as given.
func (s *Server) SeedEntry(userID int64, e models.Entry) models.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == 0 {
		s.nextEntry++
		e.ID = s.nextEntry
	} else if e.ID > s.nextEntry {
		s.nextEntry = e.ID
	}
	for _, a := range e.Attachments {
		if a.ID > s.nextMedia {
			s.nextMedia = a.ID
		}
	}
	if e.Date.IsZero() {
		e.Date = models.NewDate(2024, time.January, 1)
	}
	e.UserID = userID
	cp := cloneEntry(e)
	s.entries[e.ID] = &cp
	s.owners[e.ID] = userID
	return cloneEntry(e)
}

// SeedFile makes a stored file downloadable.
func (s *Server) SeedFile(name string, data []byte, contentType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = storedFile{data: data, contentType: contentType}
}

// IssueResetToken creates a password reset token for username, as the
// backend would when e-mailing a reset link.
func (s *Server) IssueResetToken(username, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetTokens[token] = username
}

// Force makes every request to method+path answer with status and body.
// A zero status removes the override.
func (s *Server) Force(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	if status == 0 {
		delete(s.forced, key)
		return
	}
	s.forced[key] = forced{status: status, body: body}
}

// Entry returns the stored entry with id.
func (s *Server) Entry(id int64) (models.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return models.Entry{}, false
	}
	return cloneEntry(*e), true
}

// Password returns the current password of username.
func (s *Server) Password(username string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[username]; ok {
		return u.password
	}
	return ""
}

// ResetEmails lists the addresses password resets were requested for.
func (s *Server) ResetEmails() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.resetEmails...)
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many requests matched method and path.
func (s *Server) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// LastForm returns the multipart form of the most recent create or update.
func (s *Server) LastForm() *Form {
	reqs := s.Requests()
	for i := len(reqs) - 1; i >= 0; i-- {
		if reqs[i].Form != nil {
			return reqs[i].Form
		}
	}
	return nil
}

func (s *Server) limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isMultipart(r) {
			r.Body = http.MaxBytesReader(w, r.Body, s.MaxUploadSize)
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := Request{Method: r.Method, Path: r.URL.Path, Authorization: r.Header.Get("Authorization")}
		if isMultipart(r) {
			form, err := readForm(r)
			if err != nil {
				var mbe *http.MaxBytesError
				if errors.As(err, &mbe) {
					s.append(rec)
					http.Error(w, "arquivo muito grande", http.StatusRequestEntityTooLarge)
					return
				}
				s.append(rec)
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			rec.Form = form
			r = r.WithContext(withForm(r.Context(), form))
		}
		s.append(rec)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) append(rec Request) {
	s.mu.Lock()
	s.requests = append(s.requests, rec)
	s.mu.Unlock()
}

func (s *Server) force(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		f, ok := s.forced[r.Method+" "+r.URL.Path]
		s.mu.Unlock()
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(f.status)
		_, _ = io.WriteString(w, f.body)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		tok, ok := strings.CutPrefix(h, "Bearer ")
		if !ok || tok == "" {
			http.Error(w, "token ausente", http.StatusUnauthorized)
			return
		}
		uid, err := userIDFromToken(tok, s.secret)
		if err != nil {
			http.Error(w, "token inválido", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), uid)))
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var c models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	u, ok := s.users[c.Username]
	s.mu.Unlock()
	if !ok || u.password != c.Password {
		http.Error(w, "credenciais inválidas", http.StatusUnauthorized)
		return
	}
	tok, err := generateToken(u.username, u.id, s.secret, time.Hour)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": tok, "usuarioId": u.id})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var c models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil || c.Username == "" || c.Password == "" {
		http.Error(w, "dados inválidos", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[c.Username]; exists {
		http.Error(w, "usuário já existe", http.StatusConflict)
		return
	}
	s.addUserLocked(c.Username, c.Password)
	_, _ = io.WriteString(w, "usuário registrado")
}

func (s *Server) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		http.Error(w, "email obrigatório", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	s.resetEmails = append(s.resetEmails, req.Email)
	s.mu.Unlock()
	_, _ = io.WriteString(w, "se o email existir, um link foi enviado")
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	username, ok := s.resetTokens[req.Token]
	if !ok {
		http.Error(w, "token inválido ou expirado", http.StatusBadRequest)
		return
	}
	delete(s.resetTokens, req.Token)
	s.users[username].password = req.NewPassword
	_, _ = io.WriteString(w, "senha redefinida")
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	uid := userFrom(r.Context())
	s.mu.Lock()
	out := make([]models.Entry, 0)
	for id, e := range s.entries {
		if s.owners[id] == uid {
			out = append(out, cloneEntry(*e))
		}
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getEntry(w http.ResponseWriter, r *http.Request) {
	e, status := s.ownedEntry(r)
	if status != http.StatusOK {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) createEntry(w http.ResponseWriter, r *http.Request) {
	form := formFrom(r.Context())
	if form == nil || strings.TrimSpace(form.Title) == "" || strings.TrimSpace(form.Body) == "" {
		http.Error(w, "título e conteúdo são obrigatórios", http.StatusBadRequest)
		return
	}
	uid := userFrom(r.Context())

	s.mu.Lock()
	s.nextEntry++
	e := &models.Entry{
		ID:     s.nextEntry,
		Date:   models.NewDate(time.Now().Year(), time.Now().Month(), time.Now().Day()),
		Title:  form.Title,
		Body:   form.Body,
		UserID: uid,
	}
	for _, f := range form.Files {
		if f.Field == "arquivos" {
			e.Attachments = append(e.Attachments, s.storeLocked(f))
		}
	}
	s.entries[e.ID] = e
	s.owners[e.ID] = uid
	out := cloneEntry(*e)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) updateEntry(w http.ResponseWriter, r *http.Request) {
	if _, status := s.ownedEntry(r); status != http.StatusOK {
		w.WriteHeader(status)
		return
	}
	form := formFrom(r.Context())
	if form == nil || strings.TrimSpace(form.Title) == "" || strings.TrimSpace(form.Body) == "" {
		http.Error(w, "título e conteúdo são obrigatórios", http.StatusBadRequest)
		return
	}
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	remove := make(map[int64]bool, len(form.RemoveIDs))
	for _, raw := range form.RemoveIDs {
		if mid, err := strconv.ParseInt(raw, 10, 64); err == nil {
			remove[mid] = true
		}
	}

	s.mu.Lock()
	e := s.entries[id]
	e.Title = form.Title
	e.Body = form.Body
	kept := e.Attachments[:0]
	for _, a := range e.Attachments {
		if !remove[a.ID] {
			kept = append(kept, a)
		}
	}
	e.Attachments = kept
	for _, f := range form.Files {
		if f.Field == "novosArquivos" {
			e.Attachments = append(e.Attachments, s.storeLocked(f))
		}
	}
	out := cloneEntry(*e)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) deleteEntry(w http.ResponseWriter, r *http.Request) {
	e, status := s.ownedEntry(r)
	if status != http.StatusOK {
		w.WriteHeader(status)
		return
	}
	s.mu.Lock()
	delete(s.entries, e.ID)
	delete(s.owners, e.ID)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	s.mu.Lock()
	f, ok := s.files[name]
	s.mu.Unlock()
	if !ok {
		http.Error(w, "arquivo não encontrado", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", f.contentType)
	_, _ = w.Write(f.data)
}

// ownedEntry resolves {id} and checks that the caller owns it.
func (s *Server) ownedEntry(r *http.Request) (models.Entry, int) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return models.Entry{}, http.StatusBadRequest
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return models.Entry{}, http.StatusNotFound
	}
	if s.owners[id] != userFrom(r.Context()) {
		return models.Entry{}, http.StatusForbidden
	}
	return cloneEntry(*e), http.StatusOK
}

func (s *Server) storeLocked(f File) models.Attachment {
	s.nextMedia++
	stored := fmt.Sprintf("%d_%s", s.nextMedia, f.Name)
	s.files[stored] = storedFile{data: f.Data, contentType: f.ContentType}
	return models.Attachment{
		ID:           s.nextMedia,
		OriginalName: f.Name,
		Locator:      "uploads/" + stored,
		RawKind:      backendKind(f.ContentType),
	}
}

// backendKind reproduces the backend's tipoArquivo vocabulary.
func backendKind(ct string) string {
	switch {
	case strings.HasPrefix(ct, "image/"):
		return "imagem"
	case strings.HasPrefix(ct, "video/"):
		return "video"
	case strings.HasPrefix(ct, "audio/"):
		return "audio"
	case ct == "application/pdf":
		return "documento_pdf"
	case strings.Contains(ct, "word"):
		return "documento_word"
	case ct == "":
		return "desconhecido"
	default:
		return "outro_documento"
	}
}

func readForm(r *http.Request) (*Form, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, err
	}
	form := &Form{}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return form, nil
		}
		if err != nil {
			return nil, err
		}
		if err := readPart(form, part); err != nil {
			return nil, err
		}
	}
}

func readPart(form *Form, part *multipart.Part) error {
	defer part.Close()
	data, err := io.ReadAll(part)
	if err != nil {
		return err
	}
	name := part.FormName()
	form.Fields = append(form.Fields, name)
	if part.FileName() != "" {
		form.Files = append(form.Files, File{
			Field:       name,
			Name:        part.FileName(),
			ContentType: part.Header.Get("Content-Type"),
			Data:        data,
		})
		return nil
	}
	switch name {
	case "titulo":
		form.Title = string(data)
	case "conteudo":
		form.Body = string(data)
	case "idsMidiasRemover":
		form.RemoveIDs = append(form.RemoveIDs, string(data))
	}
	return nil
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func cloneEntry(e models.Entry) models.Entry {
	e.Attachments = append([]models.Attachment(nil), e.Attachments...)
	return e
}
