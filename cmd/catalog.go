package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	catalogJobsOnly  bool
	catalogDeptsOnly bool
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the selectable job titles and departments",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		catalogs, err := a.reports.Catalog()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		both := catalogJobsOnly == catalogDeptsOnly
		if both || catalogJobsOnly {
			if both {
				fmt.Fprintf(out, "=== Job titles (%d) ===\n", len(catalogs.Jobs))
			}
			for _, job := range catalogs.Jobs {
				fmt.Fprintln(out, job)
			}
		}
		if both {
			fmt.Fprintln(out)
		}
		if both || catalogDeptsOnly {
			if both {
				fmt.Fprintf(out, "=== Departments (%d) ===\n", len(catalogs.Departments))
			}
			for _, dept := range catalogs.Departments {
				fmt.Fprintln(out, dept)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)

	catalogCmd.Flags().BoolVar(&catalogJobsOnly, "jobs", false, "Only list job titles, one per line")
	catalogCmd.Flags().BoolVar(&catalogDeptsOnly, "depts", false, "Only list departments, one per line")
}
