// Package preflight provides readiness checks for the filesystem paths a reel
// run writes to.
//
// These checks run in two contexts:
//   - The pipeline calls Checker.Check before each run. A failing check aborts
//     the run before anything is downloaded.
//   - The CLI "deps" command prints RunAll results next to the tool checks.
package preflight
