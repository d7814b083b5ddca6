// Package files keeps DATA_DIR transient.
//
// Every run leaves dated working files behind (the Statcast snapshot CSV
// and the events workbook). Discovery lists them by the date in their name
// and Pruner removes the ones that fall outside the retention window.
//
//	pruner := files.NewPruner(paths.DataDir, 14, logger)
//	removed, err := pruner.Prune(reportDate)
package files
