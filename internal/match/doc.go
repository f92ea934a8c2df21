// Package match normalizes member names and ranks candidate names by edit distance.
// It pairs members whose names differ only in case or separators, and produces the
// "did you mean" suggestions of mapper and profile diagnostics.
package match
