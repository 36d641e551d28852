package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/promptdrafter/internal/presentation/tui"
	"github.com/aretw0/promptdrafter/pkg/domain"
)

// ListRecords prints the saved names of a category, one per line.
func ListRecords(ctx context.Context, w io.Writer, app *App, rawCategory string) error {
	category, err := domain.ParseCategory(rawCategory)
	if err != nil {
		return err
	}
	names, err := app.Library.List(ctx, category)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(w, name)
	}
	return nil
}

// ShowOptions controls how ShowRecord prints.
type ShowOptions struct {
	JSON bool
	// Frame prints each text field in a box coloured like its editor widget.
	Frame bool
	// Render uses glamour; otherwise the markdown source is printed.
	Render bool
}

// frameWidth is the inner width of framed fields.
const frameWidth = 60

// ShowRecord prints a saved record as JSON or markdown.
func ShowRecord(ctx context.Context, w io.Writer, app *App, rawCategory, name string, opts ShowOptions) error {
	category, err := domain.ParseCategory(rawCategory)
	if err != nil {
		return err
	}
	rec, err := app.Library.Load(ctx, category, name)
	if err != nil {
		return err
	}

	if opts.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	if opts.Frame {
		_, err = io.WriteString(w, recordFrames(rec))
		return err
	}

	md := tui.RecordMarkdown(rec)
	if opts.Render {
		rendered, err := tui.NewRenderer()(md)
		if err == nil {
			md = rendered
		} else {
			app.Logger.Warn("Markdown rendering failed, printing source", "err", err)
		}
	}
	_, err = io.WriteString(w, md)
	return err
}

// SaveRecord saves a record from loosely typed fields.
func SaveRecord(ctx context.Context, w io.Writer, app *App, rawCategory string, fields map[string]interface{}) error {
	category, err := domain.ParseCategory(rawCategory)
	if err != nil {
		return err
	}
	rec, err := app.Library.SaveFromMap(ctx, category, fields)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Saved %s '%s'\n", category.RecordType(), rec.Name)
	if category == domain.CategoryWildcard {
		fmt.Fprintf(w, "%d values\n", len(rec.Values))
	}
	return nil
}

// DeleteRecord removes a saved record.
func DeleteRecord(ctx context.Context, w io.Writer, app *App, rawCategory, name string) error {
	category, err := domain.ParseCategory(rawCategory)
	if err != nil {
		return err
	}
	if err := app.Library.Delete(ctx, category, name); err != nil {
		return err
	}
	fmt.Fprintf(w, "Deleted %s '%s'\n", category.RecordType(), name)
	return nil
}

// recordFrames draws the text fields of a record the way the matching node
// shows them.
func recordFrames(rec *domain.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", rec.Name, rec.Type)
	switch rec.Type {
	case domain.TypeDualPrompt:
		b.WriteString(tui.Frame(domain.KindDualPrompt, domain.FieldPositive, rec.Positive, frameWidth))
		b.WriteString(tui.Frame(domain.KindDualPrompt, domain.FieldNegative, rec.Negative, frameWidth))
	case domain.TypeSinglePrompt:
		b.WriteString(tui.Frame(domain.KindSinglePrompt, domain.FieldPrompt, rec.Prompt, frameWidth))
	case domain.TypeWildcard:
		b.WriteString(tui.Frame(domain.KindWildcard, domain.FieldWildcardValues, strings.Join(rec.Values, "\n"), frameWidth))
	}
	return b.String()
}
