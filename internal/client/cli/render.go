package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/jimalvess/diario-cli/internal/client/client"
	"github.com/jimalvess/diario-cli/internal/client/editor"
	"github.com/jimalvess/diario-cli/internal/client/models"
	"github.com/jimalvess/diario-cli/internal/client/views"
)

const wrapWidth = 80

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c757d"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#d16d7a")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4caf50"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
)

// attachmentRenderer formats one attachment line of the detail view.
type attachmentRenderer func(a models.AttachmentView) string

// attachmentRenderers is the per-kind presentation of attachments. Kinds
// missing from the table are shown as documents.
var attachmentRenderers = map[models.MediaKind]attachmentRenderer{
	models.KindImage: func(a models.AttachmentView) string {
		return fmt.Sprintf("[image]    %s  %s", a.DisplayName(), mutedStyle.Render(a.URL))
	},
	models.KindVideo: func(a models.AttachmentView) string {
		return fmt.Sprintf("[video]    %s  %s", a.DisplayName(), mutedStyle.Render("play: "+a.URL))
	},
	models.KindAudio: func(a models.AttachmentView) string {
		return fmt.Sprintf("[audio]    %s  %s", a.DisplayName(), mutedStyle.Render("play: "+a.URL))
	},
	models.KindDocument: func(a models.AttachmentView) string {
		return fmt.Sprintf("[document] %s  %s", a.DisplayName(), mutedStyle.Render("download: "+a.URL))
	},
}

func renderAttachment(a models.AttachmentView) string {
	r, ok := attachmentRenderers[a.Kind()]
	if !ok {
		r = attachmentRenderers[models.KindDocument]
	}
	return fmt.Sprintf("#%d %s", a.ID, r(a))
}

// renderer writes views to out. The markdown renderer is created on first
// use with a fixed style so it never queries the terminal.
type renderer struct {
	out   io.Writer
	style string
	md    *glamour.TermRenderer
}

func newRenderer(out io.Writer) *renderer {
	style := styles.NoTTYStyle
	if f, ok := out.(*os.File); ok && isTerminal(int(f.Fd())) {
		style = styles.DarkStyle
	}
	return &renderer{out: out, style: style}
}

func (r *renderer) println(a ...any) {
	fmt.Fprintln(r.out, a...)
}

func (r *renderer) success(msg string) {
	r.println(successStyle.Render(msg))
}

func (r *renderer) markdown(body string) string {
	body = strings.TrimSpace(body)
	if body == "" {
		return ""
	}
	if r.md == nil {
		md, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(r.style),
			glamour.WithWordWrap(wrapWidth),
		)
		if err != nil {
			return body
		}
		r.md = md
	}
	out, err := r.md.Render(body)
	if err != nil {
		return body
	}
	return strings.TrimRight(out, "\n")
}

// entryTable renders one page of the list view.
func (r *renderer) entryTable(rows []models.Entry, info views.PageInfo) {
	if info.Total == 0 {
		r.println(mutedStyle.Render("No entries yet. Create one with 'new'."))
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Date", "Title", "Media").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, e := range rows {
		t.Row(strconv.FormatInt(e.ID, 10), e.Date.Display(), e.Title, strconv.Itoa(len(e.Attachments)))
	}
	r.println(t.String())
	r.println(mutedStyle.Render(fmt.Sprintf("page %d of %d, %d entries", info.Page, info.Pages, info.Total)))
}

// entry renders the detail view.
func (r *renderer) entry(e models.Entry, attachments []models.AttachmentView) {
	r.println(titleStyle.Render(e.Title))
	meta := e.Date.Display()
	if e.UserName != "" {
		meta += " by " + e.UserName
	}
	r.println(mutedStyle.Render(meta))
	r.println()
	if body := r.markdown(e.Body); body != "" {
		r.println(body)
		r.println()
	}
	if len(attachments) == 0 {
		return
	}
	r.println(titleStyle.Render("Attachments"))
	for _, a := range attachments {
		r.println(renderAttachment(a))
	}
}

// snapshot renders the editor form.
func (r *renderer) snapshot(s editor.Snapshot) {
	heading := "New entry"
	if s.Mode == editor.ModeEdit {
		heading = fmt.Sprintf("Editing entry %d", s.EntryID)
	}
	r.println(titleStyle.Render(heading) + mutedStyle.Render(" ("+s.State.String()+")"))
	r.println("Title: " + s.Title)
	if s.Body == "" {
		r.println("Body:  " + mutedStyle.Render("(empty)"))
	} else {
		r.println("Body:")
		r.println(indent(s.Body))
	}

	if len(s.Visible) > 0 {
		r.println("Attachments:")
		for _, a := range s.Visible {
			r.println("  " + renderAttachment(a))
		}
	}
	if len(s.Removed) > 0 {
		ids := make([]string, len(s.Removed))
		for i, id := range s.Removed {
			ids[i] = "#" + strconv.FormatInt(id, 10)
		}
		r.println("Removing: " + strings.Join(ids, ", "))
	}
	if len(s.Pending) > 0 {
		r.println("New files:")
		for i, p := range s.Pending {
			r.println(fmt.Sprintf("  p%d %s (%s, %s)", i+1, p.Name, p.Kind(), humanize.IBytes(uint64(p.Size))))
		}
	}
	if !s.CanStageMore {
		r.println(mutedStyle.Render(mediaLimitNotice))
	}
}

func (r *renderer) preview(p editor.Preview) {
	r.println(fmt.Sprintf("%s [%s]", titleStyle.Render(p.Name), p.Kind))
	if p.Excerpt != "" {
		r.println(indent(p.Excerpt))
	}
	if p.Local {
		r.println(mutedStyle.Render(fmt.Sprintf("local file, %s data URL", humanize.IBytes(uint64(len(p.URL))))))
		return
	}
	r.println(mutedStyle.Render(p.URL))
}

// errorMessage is the transient message shown for a failed command.
func errorMessage(err error) string {
	var msg string
	switch client.KindOf(err) {
	case client.KindNone:
		return ""
	case client.KindAuthRequired:
		if errors.Is(err, client.ErrInvalidCredentials) {
			msg = "Invalid username or password."
			break
		}
		msg = "You are not logged in or your session expired. Use 'login'."
	case client.KindForbidden:
		msg = "You do not have permission to do that."
	case client.KindNotFound:
		msg = "Not found."
	case client.KindPayloadTooLarge:
		msg = "The attachments are too large for the server."
	case client.KindValidation:
		msg = strings.TrimPrefix(err.Error(), client.ErrValidation.Error()+": ")
	default:
		msg = "Something went wrong: " + err.Error()
	}
	return errorStyle.Render(msg)
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}
