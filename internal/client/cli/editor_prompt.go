package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jimalvess/diario-cli/internal/client/editor"
	"github.com/jimalvess/diario-cli/internal/client/models"
)

const editorHelp = `Editor commands:
  title <text>            set the title
  body [text]             set the body (multi-line when no text is given)
  add <path>...           stage files (one per line when no path is given)
  unstage <pN>            drop staged file N
  rm <attachment-id>      remove a stored attachment on save
  preview <pN|id>         preview a staged file or a stored attachment
  status                  show the form
  save                    send the entry
  cancel                  leave without saving`

const mediaLimitNotice = "Media limit reached; remove something to add more."

// editLoop is the interactive form of the creation and edit views. It
// returns after a successful save, on cancel or at end of input. Failed
// saves keep the form so the user can fix it and retry.
func (a *App) editLoop(ctx context.Context, s *editor.Session) error {
	out := a.r.out
	a.r.snapshot(s.Snapshot())
	a.r.println(mutedStyle.Render("Type 'help' for editor commands."))

	for {
		fmt.Fprint(out, "edit> ")
		line, err := readLine(a.reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				a.r.println("Changes discarded.")
				return nil
			}
			return err
		}

		cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
		rest = strings.TrimSpace(rest)

		switch cmd {
		case "":
			continue
		case "help":
			a.r.println(editorHelp)
		case "title":
			err = s.SetTitle(rest)
		case "body":
			if rest == "" {
				if rest, err = GetMultiline(a.reader, "Body", out); err != nil {
					break
				}
			}
			err = s.SetBody(rest)
		case "add":
			if !s.CanStageMore() {
				a.r.println(mutedStyle.Render(mediaLimitNotice))
				continue
			}
			paths := strings.Fields(rest)
			if len(paths) == 0 {
				a.r.println("Paths to add, one per line (empty line to finish):")
				if paths, err = GetLines(a.reader); err != nil {
					break
				}
			}
			a.stage(s, paths)
		case "unstage":
			var id string
			if id, err = pendingID(s, rest); err == nil {
				err = s.UnstageFile(id)
			}
		case "rm":
			var id int64
			if id, err = parseID(rest); err == nil {
				err = s.MarkForRemoval(id)
			}
		case "preview":
			var item editor.Item
			if item, err = parseItem(s, rest); err == nil {
				var p editor.Preview
				if p, err = s.Preview(ctx, item); err == nil {
					a.r.preview(p)
				}
			}
		case "status":
			a.r.snapshot(s.Snapshot())
		case "save":
			if err := s.Submit(ctx); err != nil {
				a.r.println(errorStyle.Render(editor.FailureMessage(err)))
				continue
			}
			a.r.success("Entry saved.")
			return nil
		case "cancel":
			a.r.println("Changes discarded.")
			return nil
		default:
			a.r.println("Unknown editor command:", cmd)
		}

		if err != nil {
			a.r.println(errorMessage(err))
		}
	}
}

// applyAndSubmit fills the form from command line flags and saves it once.
func (a *App) applyAndSubmit(ctx context.Context, s *editor.Session, form entryForm) error {
	if form.Title != nil {
		if err := s.SetTitle(*form.Title); err != nil {
			return err
		}
	}
	if form.Body != nil {
		if err := s.SetBody(*form.Body); err != nil {
			return err
		}
	}
	for _, id := range form.RemoveIDs {
		if err := s.MarkForRemoval(id); err != nil {
			return err
		}
	}

	uploads := make([]models.PendingUpload, 0, len(form.Files))
	for _, path := range form.Files {
		p, err := models.PendingFromPath(path)
		if err != nil {
			return err
		}
		uploads = append(uploads, p)
	}
	// Refused files are reported; the rest of the batch is still saved.
	for _, err := range s.StageFiles(uploads...) {
		a.r.println(errorStyle.Render(errorMessage(err)))
	}

	if err := s.Submit(ctx); err != nil {
		return err
	}
	a.r.success("Entry saved.")
	return nil
}

// stage reads and stages paths, reporting every file that was refused.
func (a *App) stage(s *editor.Session, paths []string) {
	uploads := make([]models.PendingUpload, 0, len(paths))
	for _, path := range paths {
		p, err := models.PendingFromPath(path)
		if err != nil {
			a.r.println(errorStyle.Render(err.Error()))
			continue
		}
		uploads = append(uploads, p)
	}
	if len(uploads) == 0 {
		return
	}

	errs := s.StageFiles(uploads...)
	for _, err := range errs {
		a.r.println(errorMessage(err))
	}
	if staged := len(uploads) - len(errs); staged > 0 {
		a.r.println(fmt.Sprintf("Staged %d file(s).", staged))
	}
	if !s.CanStageMore() {
		a.r.println(mutedStyle.Render(mediaLimitNotice))
	}
}

// pendingID resolves a "pN" reference to the id of the Nth staged file.
func pendingID(s *editor.Session, ref string) (string, error) {
	pending := s.Snapshot().Pending
	n, err := strconv.Atoi(strings.TrimPrefix(ref, "p"))
	if !strings.HasPrefix(ref, "p") || err != nil || n < 1 || n > len(pending) {
		return "", fmt.Errorf("%w: %q", editor.ErrUnknownUpload, ref)
	}
	return pending[n-1].ID, nil
}

func parseItem(s *editor.Session, ref string) (editor.Item, error) {
	if strings.HasPrefix(ref, "p") {
		id, err := pendingID(s, ref)
		if err != nil {
			return nil, err
		}
		return editor.PendingItem(id), nil
	}
	id, err := parseID(ref)
	if err != nil {
		return nil, err
	}
	return editor.ExistingItem(id), nil
}
