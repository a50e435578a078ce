// =============================================================================
// CPS Positions - Report Command
// =============================================================================
//
// This file defines the 'report' command: one "render" of the staffing chart
// for a selection of job titles and departments.
//
// COMMAND USAGE:
//   positions report [flags]
//
// FLAGS:
//   --job, --dept        : Names to include (repeatable; none means all)
//   --group-jobs         : Combine the selected job titles
//   --group-depts        : Combine the selected departments
//   --group              : Both of the above
//   --compare-district   : Add the same jobs summed over the whole district
//   --show-source        : Print the filtered position rows
//   --download           : Print a CSV download link of the time series rows
//   --png DIR            : Render every chart facet to DIR
//   --json FILE          : Write the full result as JSON ("-" for stdout)
//
// =============================================================================

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anthonymoser/cps-positions/internal/chart"
	"github.com/anthonymoser/cps-positions/internal/report"
	"github.com/anthonymoser/cps-positions/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	reportSelection selectionFlags
	compareDistrict bool
	showSource      bool
	includeDownload bool
	reportTitle     string
	pngDir          string
	jsonOut         string
)

// =============================================================================
// REPORT COMMAND DEFINITION
// =============================================================================

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Aggregate positions for a selection and print the result",
	Long: `The report command filters the position metadata by the selected job
titles and departments, sums positions by date and status, and prints the
aggregated table together with the chart size.

Up to five job titles or departments are charted individually. Larger
selections, empty selections and --group* flags collapse that dimension into
a single "Combined" series.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportSelection.register(reportCmd, true)
	reportCmd.Flags().BoolVar(&compareDistrict, "compare-district", false, "Also report the selected jobs across the whole district")
	reportCmd.Flags().BoolVar(&showSource, "show-source", false, "Print the filtered position rows")
	reportCmd.Flags().BoolVar(&includeDownload, "download", false, "Print a CSV download link of the filtered time series rows")
	reportCmd.Flags().StringVar(&reportTitle, "title", "", "Chart title (defaults to report.title)")
	reportCmd.Flags().StringVar(&pngDir, "png", "", "Render every chart facet as PNG into this directory")
	reportCmd.Flags().StringVar(&jsonOut, "json", "", `Write the result as JSON to this file ("-" for stdout)`)
}

// =============================================================================
// MAIN REPORT FUNCTION
// =============================================================================

func runReport(cmd *cobra.Command) error {
	a, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	sel := reportSelection.selection()
	result, err := a.reports.Run(cmd.Context(), report.Request{
		Selection:         sel,
		ShowSourceData:    showSource,
		CompareToDistrict: compareDistrict,
		IncludeDownload:   includeDownload,
		Title:             reportTitle,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOut == "-" {
		return writeJSON(out, result)
	}

	fmt.Fprintln(out, "=== CPS Positions Report ===")
	fmt.Fprintf(out, "Jobs:        %s\n", describe(sel.Jobs, "all"))
	fmt.Fprintf(out, "Departments: %s\n", describe(sel.Departments, "all"))
	fmt.Fprintf(out, "Chart size:  %dx%d\n", result.Width, result.Height)
	fmt.Fprintf(out, "Total:       %d positions in %d row(s)\n\n", result.View.Total(), len(result.View.Rows))
	if err := printTable(out, result.View.Table()); err != nil {
		return err
	}

	if result.District != nil {
		fmt.Fprintln(out, "\n=== District comparison ===")
		if err := printTable(out, result.District.View.Table()); err != nil {
			return err
		}
	}

	if result.SourceRows != nil {
		fmt.Fprintf(out, "\n=== Source rows (%d) ===\n", result.SourceRows.Len())
		if err := printTable(out, *result.SourceRows); err != nil {
			return err
		}
	}

	if result.DownloadLink != "" {
		fmt.Fprintf(out, "\n%s\n", result.DownloadLink)
	}

	for _, w := range result.Warnings {
		a.log.Warn("%s", w)
	}

	if pngDir != "" {
		if err := renderFacets(out, a, result.Chart, pngDir); err != nil {
			return err
		}
	}

	if jsonOut != "" {
		f, err := os.Create(jsonOut)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", jsonOut, err)
		}
		defer f.Close()
		if err := writeJSON(f, result); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nWrote %s\n", jsonOut)
	}

	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// renderFacets writes one PNG per chart facet into dir. Facets without any
// positions are skipped.
func renderFacets(out io.Writer, a *app, spec chart.Spec, dir string) error {
	format := a.cfg.ExportFileNameFormat
	if !strings.Contains(format, "{facet}") {
		format += "_{facet}"
	}
	manager := utils.NewOutputManager(dir, format)

	fmt.Fprintln(out)
	for i, facet := range spec.Facets {
		if facet.Total() == 0 {
			a.log.Warn("Skipping empty facet %s / %s", facet.Department, facet.JobTitle)
			continue
		}
		params := map[string]string{"kind": "facet", "facet": strconv.Itoa(i)}
		path, err := manager.Write(".png", params, func(w io.Writer) error {
			return chart.RenderPNG(w, spec, i)
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  ✓ %s / %s -> %s\n", facet.Department, facet.JobTitle, path)
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
