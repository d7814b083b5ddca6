// Package app wires the daily report run together.
//
// An Application owns the configured clients and the five steps of a run:
//
//	1. config   validate settings, create working directories
//	2. fetch    Statcast batted balls, play IDs, names, wOBA weights
//	3. classify Action Items and Front Row Joes
//	4. render   PDF report plus the events workbook
//	5. deliver  email the report, unless SEND_EMAIL=false
//
// Steps run one after another through operations.Pipeline. The first
// failure ends the run and is returned as an operations.RunError; the
// caller decides the exit status. The app never calls os.Exit.
package app
