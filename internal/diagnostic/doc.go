// Package diagnostic provides structured errors, warnings and infos produced
// while mapping routines and declarative profiles are built.
//
// Key capabilities:
//   - Unmapped member reports with ranked suggestions
//   - Profile validation errors with the offending path
package diagnostic
