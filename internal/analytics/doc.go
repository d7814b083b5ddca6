// Package analytics labels batted balls for the daily report.
//
// Classify is a pure function: the same events, roster, weights and rules
// always give the same Classification, whatever the order of the input.
// Two labels exist:
//
//   - Front Row Joe: a tracked batter's home run that would have stayed in
//     a bigger park (short to the corners or to center).
//   - Action Item: an untracked batter's long ball in play that was not a
//     home run (deep to the corners or to center).
package analytics
