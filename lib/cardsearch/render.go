package cardsearch

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"tcgsearch/internal/telemetry"

	"github.com/jedib0t/go-pretty/v6/table"
)

const report_renderer_render = "renderer.render"

type Format int

const (
	FormatJSON Format = iota
	FormatTable
)

func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "json":
		return FormatJSON, nil
	case "table":
		return FormatTable, nil
	}
	return 0, fmt.Errorf("unknown output format %q", s)
}

func writeMessage(w io.Writer, view View) error {
	if view.Kind == ViewError {
		_, err := fmt.Fprintf(w, "Error: %s\n", view.Message)
		return err
	}
	_, err := fmt.Fprintln(w, view.Message)
	return err
}

// RenderJSON writes the cards as indented JSON, or the view's message.
func RenderJSON(w io.Writer, view View) error {
	if view.Kind != ViewCards {
		return writeMessage(w, view)
	}
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	return encoder.Encode(view.Cards)
}

// RenderTable writes a summary table of the cards, or the view's message.
func RenderTable(w io.Writer, view View) error {
	if view.Kind != ViewCards {
		return writeMessage(w, view)
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Name", "Game", "Set", "Number", "Rarity", "Lowest Price"})
	for _, card := range view.Cards {
		price := ""
		if lowest, ok := card.LowestPrice(); ok {
			price = strconv.FormatFloat(lowest, 'f', 2, 64)
		}
		t.AppendRow(table.Row{
			card.Name(),
			card.Game(),
			card.Set(),
			card.Number(),
			card.Rarity(),
			price,
		})
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// WriterRenderer implements Renderer by writing every report to a writer.
type WriterRenderer struct {
	w      io.Writer
	format Format
	tel    telemetry.API
}

func NewWriterRenderer(w io.Writer, format Format, tel telemetry.API) WriterRenderer {
	return WriterRenderer{
		w:      w,
		format: format,
		tel:    telemetry.NewScopedAPI("cardsearch", tel),
	}
}

func (r WriterRenderer) Render(report Report) {
	if report.NoQuery {
		return
	}

	view := NewView(report.Outcome)
	var err error
	switch r.format {
	case FormatTable:
		err = RenderTable(r.w, view)
	default:
		err = RenderJSON(r.w, view)
	}
	if err != nil {
		r.tel.ReportBroken(report_renderer_render, err)
	}
}
