package views

import (
	"context"
	"errors"

	"github.com/jimalvess/diario-cli/internal/client/models"
	"github.com/jimalvess/diario-cli/internal/logging"
)

var ErrNotLoaded = errors.New("entry not loaded")

// DetailAPI is the part of the backend the detail view needs.
type DetailAPI interface {
	BaseURL() string
	GetEntry(ctx context.Context, id int64) (models.Entry, error)
	DeleteEntry(ctx context.Context, id int64) error
}

// EntryDetail is the read-only view of one entry.
type EntryDetail struct {
	api   DetailAPI
	entry *models.Entry
	log   logging.Logger
}

func NewEntryDetail(api DetailAPI, log logging.Logger) *EntryDetail {
	if log == nil {
		log = logging.Discard()
	}
	return &EntryDetail{api: api, log: log.With("component", "entry_detail")}
}

func (d *EntryDetail) Load(ctx context.Context, id int64) (models.Entry, error) {
	e, err := d.api.GetEntry(ctx, id)
	if err != nil {
		d.entry = nil
		return models.Entry{}, err
	}
	d.entry = &e
	return e, nil
}

func (d *EntryDetail) Entry() (models.Entry, bool) {
	if d.entry == nil {
		return models.Entry{}, false
	}
	return *d.entry, true
}

// Attachments returns the loaded entry's attachments with their URLs.
func (d *EntryDetail) Attachments() []models.AttachmentView {
	if d.entry == nil {
		return nil
	}
	return d.entry.AttachmentViews(d.api.BaseURL())
}

// Attachment looks up one attachment of the loaded entry.
func (d *EntryDetail) Attachment(id int64) (models.AttachmentView, bool) {
	for _, a := range d.Attachments() {
		if a.ID == id {
			return a, true
		}
	}
	return models.AttachmentView{}, false
}

// Delete deletes the loaded entry. The view is emptied on success.
func (d *EntryDetail) Delete(ctx context.Context) error {
	if d.entry == nil {
		return ErrNotLoaded
	}
	id := d.entry.ID
	if err := d.api.DeleteEntry(ctx, id); err != nil {
		return err
	}
	d.log.Info(ctx, "entry deleted", "entry_id", id)
	d.entry = nil
	return nil
}
