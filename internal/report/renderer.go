// Package report lays out the daily PDF: a cover with logo, title, date and
// definitions, then one table per category.
package report

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"lblreport/internal/analytics"
	"lblreport/internal/config"
	"lblreport/pkg/contracts/domain"
)

// Table titles.
const (
	ActionItemsTitle  = "Action Items (non-clients)"
	FrontRowJoesTitle = "FRJs (clients)"
	EmptyNotice       = "No events today."
)

// Page geometry in inches.
const (
	marginSide   = 0.5
	marginTop    = 0.5
	marginBottom = 0.5
	logoSize     = 1.0
	headerHeight = 0.3
	rowHeight    = 0.24
)

type rgb struct{ r, g, b int }

var (
	lblGreen   = rgb{0, 128, 0}
	lightGreen = rgb{230, 255, 230}
	white      = rgb{255, 255, 255}
	black      = rgb{0, 0, 0}
	darkGray   = rgb{169, 169, 169}
	linkBlue   = rgb{0, 0, 238}
)

type column struct {
	title string
	width float64
	value func(domain.ClassifiedEvent) string
}

var columns = []column{
	{"Batter", 1.45, func(e domain.ClassifiedEvent) string { return e.BatterName }},
	{"Video", 0.55, nil},
	{"Batter ID", 0.75, func(e domain.ClassifiedEvent) string { return strconv.FormatInt(e.Batter, 10) }},
	{"Exit Velo", 0.7, func(e domain.ClassifiedEvent) string { return domain.FormatOptionalFloat(e.LaunchSpeed) }},
	{"Launch Angle", 0.85, func(e domain.ClassifiedEvent) string { return domain.FormatOptionalFloat(e.LaunchAngle) }},
	{"Distance", 0.7, func(e domain.ClassifiedEvent) string { return domain.FormatOptionalFloat(e.HitDistance) }},
	{"Field", 0.45, func(e domain.ClassifiedEvent) string { return e.Field }},
	{"Event", 1.25, func(e domain.ClassifiedEvent) string { return strings.ReplaceAll(e.Event, "_", " ") }},
	{"wOBA Swing", 0.8, func(e domain.ClassifiedEvent) string { return strconv.FormatFloat(e.WobaSwing, 'f', 3, 64) }},
}

// Input is everything a report is built from.
type Input struct {
	Date           time.Time
	GeneratedAt    time.Time
	Classification domain.Classification
	Definitions    []analytics.Definition
	Weights        *domain.WobaWeights
	Logo           *Logo
}

// Renderer builds report documents.
type Renderer struct {
	logger   *slog.Logger
	compress bool
}

// NewRenderer creates a renderer.
func NewRenderer(logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		logger:   logger.With(slog.String("component", "report")),
		compress: true,
	}
}

// Render writes the PDF for in to w. Identical inputs produce identical
// bytes.
func (r *Renderer) Render(w io.Writer, in Input) error {
	pdf := fpdf.New("P", "in", "Letter", "")
	pdf.SetMargins(marginSide, marginTop, marginSide)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.SetCreationDate(in.GeneratedAt)
	pdf.SetModificationDate(in.GeneratedAt)
	pdf.SetCatalogSort(true)
	pdf.SetCompression(r.compress)
	pdf.SetTitle(fmt.Sprintf("%s %s", config.ReportTitle, in.Date.Format("2006-01-02")), true)
	pdf.SetAuthor("Longball Labs", true)
	pdf.SetCreator(config.AppName+" "+config.AppVersion, true)
	pdf.AliasNbPages("")

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-marginBottom + 0.1)
		pdf.SetFont("Helvetica", "", 8)
		setText(pdf, darkGray)
		pdf.CellFormat(0, 0.2, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	r.cover(pdf, tr, in)
	r.definitions(pdf, tr, in.Definitions)

	pdf.AddPage()
	r.table(pdf, tr, ActionItemsTitle, in.Classification.ActionItems)
	pdf.Ln(0.5)
	r.table(pdf, tr, FrontRowJoesTitle, in.Classification.FrontRowJoes)

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to lay out report: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func (r *Renderer) cover(pdf *fpdf.Fpdf, tr func(string) string, in Input) {
	pageW, _ := pdf.GetPageSize()

	if in.Logo != nil {
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("logo", opts, bytes.NewReader(in.Logo.PNG))
		if pdf.Err() {
			r.logger.Warn("Logo could not be embedded, rendering without it", slog.String("error", pdf.Error().Error()))
			pdf.ClearError()
		} else {
			w, h := logoSize, logoSize
			if in.Logo.Aspect > 1 {
				h = logoSize / in.Logo.Aspect
			} else if in.Logo.Aspect > 0 {
				w = logoSize * in.Logo.Aspect
			}
			pdf.ImageOptions("logo", (pageW-w)/2, pdf.GetY(), w, h, false, opts, 0, "")
			pdf.SetY(pdf.GetY() + logoSize + 0.25)
		}
	}

	pdf.SetFont("Helvetica", "B", 24)
	setText(pdf, lblGreen)
	pdf.CellFormat(0, 0.45, tr(config.ReportTitle), "", 1, "C", false, 0, "")
	pdf.Ln(0.1)

	pdf.SetFont("Helvetica", "", 10)
	setText(pdf, darkGray)
	pdf.CellFormat(0, 0.2, "From "+in.Date.Format("2006-01-02"), "", 1, "C", false, 0, "")

	summary := fmt.Sprintf("%d Action Items, %d FRJs", len(in.Classification.ActionItems), len(in.Classification.FrontRowJoes))
	if in.Weights != nil {
		summary += fmt.Sprintf(" | wOBA weights: %d season", in.Weights.Season)
	}
	pdf.CellFormat(0, 0.2, summary, "", 1, "C", false, 0, "")
	pdf.Ln(0.35)
}

func (r *Renderer) definitions(pdf *fpdf.Fpdf, tr func(string) string, defs []analytics.Definition) {
	pdf.SetFont("Helvetica", "B", 18)
	setText(pdf, lblGreen)
	pdf.CellFormat(0, 0.35, "Definitions", "", 1, "C", false, 0, "")
	pdf.Ln(0.25)

	setText(pdf, black)
	for _, d := range defs {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 0.2, tr(d.Term+":"), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 0.2, tr(d.Text), "", "L", false)
		pdf.Ln(0.15)
	}
}

func (r *Renderer) table(pdf *fpdf.Fpdf, tr func(string) string, title string, events []domain.ClassifiedEvent) {
	pdf.SetFont("Helvetica", "B", 16)
	setText(pdf, lblGreen)
	pdf.CellFormat(0, 0.35, title, "", 1, "C", false, 0, "")
	pdf.Ln(0.15)

	if len(events) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		setText(pdf, darkGray)
		pdf.CellFormat(0, 0.25, EmptyNotice, "", 1, "C", false, 0, "")
		return
	}

	_, pageH := pdf.GetPageSize()
	pdf.SetDrawColor(lblGreen.r, lblGreen.g, lblGreen.b)
	pdf.SetLineWidth(0.01)

	header(pdf)
	for i, ev := range events {
		if pdf.GetY()+rowHeight > pageH-marginBottom {
			pdf.AddPage()
			pdf.SetDrawColor(lblGreen.r, lblGreen.g, lblGreen.b)
			header(pdf)
		}

		fill := white
		if i%2 == 1 {
			fill = lightGreen
		}
		pdf.SetFillColor(fill.r, fill.g, fill.b)

		for _, col := range columns {
			if col.value == nil {
				video(pdf, col.width, ev)
				continue
			}
			pdf.SetFont("Helvetica", "", 8)
			setText(pdf, black)
			pdf.CellFormat(col.width, rowHeight, fit(pdf, tr, col.value(ev), col.width), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}
}

func header(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(lblGreen.r, lblGreen.g, lblGreen.b)
	setText(pdf, white)
	for _, col := range columns {
		pdf.CellFormat(col.width, headerHeight, col.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
}

func video(pdf *fpdf.Fpdf, width float64, ev domain.ClassifiedEvent) {
	url := ev.VideoURL()
	if url == "" {
		pdf.SetFont("Helvetica", "", 8)
		setText(pdf, darkGray)
		pdf.CellFormat(width, rowHeight, "-", "1", 0, "C", true, 0, "")
		return
	}
	pdf.SetFont("Helvetica", "U", 8)
	setText(pdf, linkBlue)
	pdf.CellFormat(width, rowHeight, "Link", "1", 0, "C", true, 0, url)
}

// fit shortens s with an ellipsis until it fits width and returns it in
// the core font encoding.
func fit(pdf *fpdf.Fpdf, tr func(string) string, s string, width float64) string {
	const padding = 0.08
	if out := tr(s); pdf.GetStringWidth(out) <= width-padding {
		return out
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := tr(strings.TrimSpace(string(runes)) + "...")
		if pdf.GetStringWidth(candidate) <= width-padding {
			return candidate
		}
	}
	return ""
}

func setText(pdf *fpdf.Fpdf, c rgb) {
	pdf.SetTextColor(c.r, c.g, c.b)
}
