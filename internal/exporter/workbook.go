package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"lblreport/internal/config"
	"lblreport/pkg/contracts/domain"
)

// Sheet names of the events workbook.
const (
	SheetSummary      = "Summary"
	SheetActionItems  = "Action Items"
	SheetFrontRowJoes = "FRJs"
)

var workbookHeaders = []string{
	"Batter", "Batter ID", "Video", "Event", "Field", "Distance",
	"Exit Velo", "Launch Angle", "wOBA Value", "wOBA Swing",
	"Game PK", "Inning", "Half",
}

var columnWidths = map[string]float64{
	"A": 24, "B": 11, "C": 8, "D": 20, "E": 7, "F": 10,
	"G": 10, "H": 13, "I": 11, "J": 11, "K": 10, "L": 8, "M": 7,
}

// WorkbookWriter exports classified events to Excel.
type WorkbookWriter struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewWorkbookWriter creates a workbook writer rooted at DATA_DIR.
func NewWorkbookWriter(paths *config.Paths, logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{paths: paths, logger: logger.With(slog.String("component", "exporter"))}
}

// WriteWorkbook saves the events workbook of date and returns its path.
func (w *WorkbookWriter) WriteWorkbook(date time.Time, c domain.Classification, weights *domain.WobaWeights) (string, error) {
	path := w.paths.GetEventsWorkbookPath(date)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return "", err
	}
	styles, err := newWorkbookStyles(f)
	if err != nil {
		return "", err
	}

	if err := writeSummary(f, styles, date, c, weights); err != nil {
		return "", err
	}
	if err := writeEventSheet(f, styles, SheetActionItems, c.ActionItems); err != nil {
		return "", err
	}
	if err := writeEventSheet(f, styles, SheetFrontRowJoes, c.FrontRowJoes); err != nil {
		return "", err
	}

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   fmt.Sprintf("%s %s", config.ReportTitle, date.Format("2006-01-02")),
		Creator: config.AppName,
	}); err != nil {
		return "", err
	}
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}

	w.logger.Info("Wrote events workbook",
		slog.String("path", path),
		slog.Int("action_items", len(c.ActionItems)),
		slog.Int("front_row_joes", len(c.FrontRowJoes)))
	return path, nil
}

type workbookStyles struct {
	header  int
	decimal int
	weight  int
	link    int
}

func newWorkbookStyles(f *excelize.File) (workbookStyles, error) {
	var (
		s   workbookStyles
		err error
	)
	s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"008000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return s, err
	}
	oneDecimal := "0.0"
	if s.decimal, err = f.NewStyle(&excelize.Style{CustomNumFmt: &oneDecimal}); err != nil {
		return s, err
	}
	threeDecimals := "0.000"
	if s.weight, err = f.NewStyle(&excelize.Style{CustomNumFmt: &threeDecimals}); err != nil {
		return s, err
	}
	s.link, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "0000EE", Underline: "single"},
	})
	return s, err
}

func writeSummary(f *excelize.File, styles workbookStyles, date time.Time, c domain.Classification, weights *domain.WobaWeights) error {
	rows := [][]interface{}{
		{"Report date", date.Format("2006-01-02")},
		{"Action Items", len(c.ActionItems)},
		{"Front Row Joes", len(c.FrontRowJoes)},
	}
	if weights != nil {
		rows = append(rows,
			[]interface{}{"wOBA season", weights.Season},
			[]interface{}{"wBB", weights.Walk},
			[]interface{}{"wHBP", weights.HBP},
			[]interface{}{"w1B", weights.Single},
			[]interface{}{"w2B", weights.Double},
			[]interface{}{"w3B", weights.Triple},
			[]interface{}{"wHR", weights.HomeRun},
		)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(SheetSummary, cell, &r); err != nil {
			return err
		}
	}
	if weights != nil {
		if err := f.SetCellStyle(SheetSummary, "B5", fmt.Sprintf("B%d", len(rows)), styles.weight); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetSummary, "A", "A", 16)
}

func writeEventSheet(f *excelize.File, styles workbookStyles, sheet string, events []domain.ClassifiedEvent) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	header := make([]interface{}, len(workbookHeaders))
	for i, h := range workbookHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(len(workbookHeaders))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", styles.header); err != nil {
		return err
	}
	for col, width := range columnWidths {
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return err
		}
	}

	for i, ev := range events {
		rowNum := i + 2
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}

		video := ""
		if ev.PlayID != "" {
			video = "Link"
		}
		values := []interface{}{
			ev.BatterName, ev.Batter, video, ev.Event, ev.Field,
			optional(ev.HitDistance), optional(ev.LaunchSpeed), optional(ev.LaunchAngle),
			ev.WobaValue, ev.WobaSwing, ev.GamePK, ev.Inning, string(ev.InningTopBot),
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}

		if url := ev.VideoURL(); url != "" {
			linkCell := fmt.Sprintf("C%d", rowNum)
			if err := f.SetCellHyperLink(sheet, linkCell, url, "External"); err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, linkCell, linkCell, styles.link); err != nil {
				return err
			}
		}
	}

	if len(events) > 0 {
		last := len(events) + 1
		if err := f.SetCellStyle(sheet, "F2", fmt.Sprintf("H%d", last), styles.decimal); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "I2", fmt.Sprintf("J%d", last), styles.weight); err != nil {
			return err
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func optional(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
