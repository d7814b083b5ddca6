// Package statcast downloads the Baseball Savant pitch-level export for a
// single day and turns it into batted-ball events ready for classification.
//
// The Fetcher runs the whole acquisition for a report date:
//
//	raw CSV -> parse -> keep hit_into_play -> dedupe -> play IDs -> batter names
//
// Play IDs come from the MLB play-by-play feed and are joined on the pitch
// key (game, inning, half inning, at-bat number, pitch number, batter,
// pitcher). Every failure is returned to the caller; there are no retries.
package statcast
