package options

// DefaultRestartThreshold is how many nested re-entries of an in-progress type pair a mapper
// build tolerates before it restarts with cross-reference tracking forced on.
// It is a safety valve, not a meaningful depth.
const DefaultRestartThreshold = 3
