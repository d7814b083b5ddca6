// Package exporter writes the working files a run leaves in DATA_DIR next
// to the PDF:
//
// CSVWriter streams the day's batted balls (after play-ID and name
// enrichment) to statcast_<date>.csv, so a report can be audited or
// re-classified without hitting Savant again.
//
// WorkbookWriter stores the classified events in an .xlsx workbook with
// one sheet per category and clickable video links.
//
// Example usage:
//
//	csvWriter := exporter.NewCSVWriter(paths, logger)
//	path, err := csvWriter.WriteSnapshot(date, events)
//
//	workbook := exporter.NewWorkbookWriter(paths, logger)
//	path, err = workbook.WriteWorkbook(date, classification, weights)
package exporter
