// Package shared holds helpers used by more than one package.
//
// The testutil subpackage captures slog output so tests can assert on what
// a step logged:
//
//	logger, handler := testutil.NewTestLogger(t)
//	pruner := files.NewPruner(dir, 14, logger)
//	...
//	testutil.AssertLogContains(t, handler, slog.LevelInfo, "Pruned working files")
package shared
