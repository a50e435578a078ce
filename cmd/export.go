// =============================================================================
// CPS Positions - Export Command
// =============================================================================
//
// This file defines the 'export' command, which writes the time series rows
// matching a selection to a file.
//
// COMMAND USAGE:
//   positions export [--job J]... [--dept D]... [--format csv|xlsx|link] [--out FILE]
//
// FORMATS:
//   csv  : RFC 4180 CSV with a header row
//   xlsx : One-sheet workbook
//   link : HTML anchor embedding the CSV as a base64 data URI
//
// Without --out the file is written to output_dir under a generated name.
// "--out -" writes to stdout (csv and link only).
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anthonymoser/cps-positions/internal/export"
	"github.com/anthonymoser/cps-positions/internal/types"
	"github.com/anthonymoser/cps-positions/pkg/utils"
)

var (
	exportSelection selectionFlags
	exportFormat    string
	exportOut       string
)

// exportFormats maps each --format value to its file extension.
var exportFormats = map[string]string{
	"csv":  ".csv",
	"xlsx": ".xlsx",
	"link": ".html",
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the time series rows matching a selection",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		exportFormat = strings.ToLower(exportFormat)
		if _, ok := exportFormats[exportFormat]; !ok {
			return fmt.Errorf("unknown format %q (want csv, xlsx or link)", exportFormat)
		}
		if exportOut == "-" && exportFormat == "xlsx" {
			return fmt.Errorf("xlsx cannot be written to stdout")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportSelection.register(exportCmd, false)
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv, xlsx or link")
	exportCmd.Flags().StringVar(&exportOut, "out", "", `Output file ("-" for stdout; default is a generated name in output_dir)`)
}

func runExport(cmd *cobra.Command) error {
	a, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	table, err := a.reports.ExportSourceRows(exportSelection.selection())
	if err != nil {
		return err
	}

	write := func(w io.Writer) error {
		return writeExport(w, table, a.cfg.Report.DownloadFilename, a.cfg.Report.DownloadLabel)
	}

	out := cmd.OutOrStdout()
	switch exportOut {
	case "-":
		return write(out)
	case "":
		manager := utils.NewOutputManager(a.cfg.OutputDir, a.cfg.ExportFileNameFormat)
		path, err := manager.Write(exportFormats[exportFormat], map[string]string{"kind": "positions"}, write)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Exported %d row(s) to %s\n", table.Len(), path)
	default:
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", exportOut, err)
		}
		if err := write(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(out, "Exported %d row(s) to %s\n", table.Len(), exportOut)
	}
	return nil
}

func writeExport(w io.Writer, table types.Table, filename, label string) error {
	switch exportFormat {
	case "xlsx":
		return export.WriteXLSX(w, table, export.DefaultSheet)
	case "link":
		link, err := export.EncodeDownloadLink(table, filename, label)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, link)
		return err
	default:
		return export.WriteCSV(w, table)
	}
}
