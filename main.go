// =============================================================================
// CPS Positions - Main Entry Point
// =============================================================================
//
// Entry point for the positions CLI. All command wiring lives in the cmd
// package.
//
// USAGE:
//   positions report --job "Teacher" --dept "Lincoln ES"
//   positions catalog
//   positions export --job "Teacher" --format xlsx
//   positions serve
//   positions version
//
// LAYOUT:
//   - cmd/       : Cobra command definitions
//   - internal/  : loading, filtering, export and charting logic
//   - pkg/       : shared file utilities
//
// =============================================================================

package main

import (
	"github.com/anthonymoser/cps-positions/cmd"
)

// main delegates to the Cobra root command.
func main() {
	cmd.Execute()
}
