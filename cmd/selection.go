package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/anthonymoser/cps-positions/internal/types"
)

// selectionFlags are shared by every command that filters positions.
type selectionFlags struct {
	jobs       []string
	depts      []string
	groupJobs  bool
	groupDepts bool
	group      bool
}

// register adds the filter flags to cmd. Names are taken verbatim, so a
// value may contain commas: repeat the flag to select several.
func (f *selectionFlags) register(cmd *cobra.Command, grouping bool) {
	cmd.Flags().StringArrayVar(&f.jobs, "job", nil, "Job title to include (repeatable)")
	cmd.Flags().StringArrayVar(&f.depts, "dept", nil, "Department to include (repeatable)")
	if !grouping {
		return
	}
	cmd.Flags().BoolVar(&f.groupJobs, "group-jobs", false, "Combine the selected job titles into one")
	cmd.Flags().BoolVar(&f.groupDepts, "group-depts", false, "Combine the selected departments into one")
	cmd.Flags().BoolVar(&f.group, "group", false, "Shorthand for --group-jobs --group-depts")
}

func (f *selectionFlags) selection() types.Selection {
	return types.Selection{
		Jobs:        f.jobs,
		Departments: f.depts,
		GroupJobs:   f.groupJobs || f.group,
		GroupDepts:  f.groupDepts || f.group,
	}
}

// describe summarizes one side of a selection for display.
func describe(values []string, none string) string {
	if len(values) == 0 {
		return none
	}
	return strings.Join(values, ", ")
}

// printTable writes table as aligned columns.
func printTable(w io.Writer, table types.Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(table.Columns, "\t"))
	for _, row := range table.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
