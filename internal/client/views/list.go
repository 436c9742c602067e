package views

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/jimalvess/diario-cli/internal/client/models"
	"github.com/jimalvess/diario-cli/internal/logging"
)

// DefaultPageSize matches the web table.
const DefaultPageSize = 9

var ErrNotListed = errors.New("entry is not in the list")

// ListAPI is the part of the backend the entry list needs.
type ListAPI interface {
	ListEntries(ctx context.Context) ([]models.Entry, error)
	DeleteEntry(ctx context.Context, id int64) error
}

type SortOrder int

const (
	// SortServer keeps the order the backend returned.
	SortServer SortOrder = iota
	SortAsc
	SortDesc
)

func (o SortOrder) String() string {
	switch o {
	case SortAsc:
		return "asc"
	case SortDesc:
		return "desc"
	default:
		return "server"
	}
}

// ParseSortOrder accepts "", "server", "asc" and "desc".
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "server":
		return SortServer, nil
	case "asc":
		return SortAsc, nil
	case "desc":
		return SortDesc, nil
	default:
		return SortServer, fmt.Errorf("unknown sort order %q", s)
	}
}

// PageInfo describes one page of rows. Page is 1-based.
type PageInfo struct {
	Page  int
	Pages int
	Size  int
	Total int
}

// EntryList is the view model of the entries table.
type EntryList struct {
	mu      sync.Mutex
	api     ListAPI
	entries []models.Entry
	order   SortOrder
	log     logging.Logger
}

func NewEntryList(api ListAPI, log logging.Logger) *EntryList {
	if log == nil {
		log = logging.Discard()
	}
	return &EntryList{api: api, log: log.With("component", "entry_list")}
}

// Load replaces the rows with the backend's list.
func (l *EntryList) Load(ctx context.Context) error {
	entries, err := l.api.ListEntries(ctx)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.entries = entries
	l.mu.Unlock()
	l.log.Debug(ctx, "entries loaded", "count", len(entries))
	return nil
}

// SortByDate changes the display order; it never refetches.
func (l *EntryList) SortByDate(order SortOrder) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.order = order
}

func (l *EntryList) Order() SortOrder {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.order
}

// Rows returns the rows in display order. Sorting is stable, so entries of
// the same day keep their server order.
func (l *EntryList) Rows() []models.Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rowsLocked()
}

func (l *EntryList) rowsLocked() []models.Entry {
	rows := slices.Clone(l.entries)
	switch l.order {
	case SortAsc:
		slices.SortStableFunc(rows, func(a, b models.Entry) int { return a.Date.Compare(b.Date.Time) })
	case SortDesc:
		slices.SortStableFunc(rows, func(a, b models.Entry) int { return b.Date.Compare(a.Date.Time) })
	}
	return rows
}

// Page returns page n (1-based) of the display rows. n is clamped to the
// available pages and size <= 0 means DefaultPageSize.
func (l *EntryList) Page(n, size int) ([]models.Entry, PageInfo) {
	if size <= 0 {
		size = DefaultPageSize
	}
	rows := l.Rows()

	pages := (len(rows) + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	n = max(1, min(n, pages))

	start := min((n-1)*size, len(rows))
	end := min(start+size, len(rows))
	return rows[start:end], PageInfo{Page: n, Pages: pages, Size: size, Total: len(rows)}
}

// Delete removes the row immediately and then asks the backend to delete the
// entry. If the request fails the row is put back where it was and the error
// is returned. The list is not refetched afterwards.
func (l *EntryList) Delete(ctx context.Context, id int64) error {
	l.mu.Lock()
	i := slices.IndexFunc(l.entries, func(e models.Entry) bool { return e.ID == id })
	if i < 0 {
		l.mu.Unlock()
		return fmt.Errorf("delete entry %d: %w", id, ErrNotListed)
	}
	removed := l.entries[i]
	l.entries = slices.Delete(l.entries, i, i+1)
	l.mu.Unlock()

	if err := l.api.DeleteEntry(ctx, id); err != nil {
		l.mu.Lock()
		at := min(i, len(l.entries))
		l.entries = slices.Insert(l.entries, at, removed)
		l.mu.Unlock()
		l.log.Warn(ctx, "delete rolled back", "entry_id", id, "error", err)
		return err
	}
	l.log.Info(ctx, "entry deleted", "entry_id", id)
	return nil
}
