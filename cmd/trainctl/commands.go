package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"training_tracker/internal/compliance"
	"training_tracker/internal/database"
	"training_tracker/internal/services"
)

func parseIDs(args []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(args))
	for _, a := range args {
		id, err := uuid.Parse(a)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", a, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func newMigrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.pool == nil {
				return errors.New("migrate needs a database connection")
			}
			if err := database.RunMigrations(cmd.Context(), c.pool); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "migrations applied")
			return nil
		},
	}
}

func newReconcileCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile <import-id>",
		Short: "Match an import's rows against employees and courses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			res, err := c.svc.Imports.Reconcile(cmd.Context(), ids[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "reconciled %d rows\n", res.Reconciled)
			printCounts(c.out, res.Counts)
			return nil
		},
	}
}

func printCounts(w io.Writer, counts map[string]int) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, st := range []string{"matched", "duplicate", "ambiguous", "unmatched", "applied", "pending"} {
		if n := counts[st]; n > 0 {
			fmt.Fprintf(tw, "  %s\t%d\n", st, n)
		}
	}
	tw.Flush()
}

func newApplyCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <import-id>",
		Short: "Record training for every matched row of an import",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			res, err := c.svc.Imports.Apply(cmd.Context(), ids[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "applied %d rows, %d duplicates\n", res.Applied, res.Duplicates)
			if res.Unmatched > 0 {
				fmt.Fprintf(c.out, "%d rows lost their employee or course and need reconciling\n", res.Unmatched)
			}
			return nil
		},
	}
}

func newDuplicatesCmd(c *cli) *cobra.Command {
	var threshold float64
	cmd := &cobra.Command{
		Use:   "duplicates",
		Short: "List groups of courses that look like the same training",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := c.svc.Courses.FindDuplicates(cmd.Context(), threshold)
			if err != nil {
				return err
			}
			if len(groups) == 0 {
				fmt.Fprintln(c.out, "no duplicate courses found")
				return nil
			}
			tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			for i, g := range groups {
				fmt.Fprintf(tw, "group %d\tscore %.2f\t\n", i+1, g.Score)
				for _, course := range g.Courses {
					code := ""
					if course.Code != nil {
						code = *course.Code
					}
					fmt.Fprintf(tw, "  %s\t%s\t%s\n", course.ID, code, course.Name)
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().Float64Var(&threshold, "threshold", 0.85, "minimum similarity between course names (0..1)")
	return cmd
}

func newMergeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <target-id> <source-id>...",
		Short: "Fold duplicate courses into a target course",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			res, err := c.svc.Courses.Merge(cmd.Context(), ids[0], ids[1:])
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "merged %d courses into %s\n", len(res.MergedIDs), res.TargetID)
			fmt.Fprintf(c.out, "records moved %d, dropped %d, aliases added %d\n",
				res.RecordsMoved, res.RecordsDropped, res.AliasesAdded)
			return nil
		},
	}
}

func newExpiringCmd(c *cli) *cobra.Command {
	var (
		window int
		status string
	)
	cmd := &cobra.Command{
		Use:   "expiring",
		Short: "Print expired and soon-to-expire training",
		Long: `Prints a table of employee/course pairs needing attention. Without
--status both expired and expiring_soon rows are listed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := services.ReportFilter{Status: compliance.Status(status)}
			if cmd.Flags().Changed("window") {
				f.Window = &window
			}
			rows, err := c.svc.Compliance.Report(cmd.Context(), f)
			if err != nil {
				return err
			}
			if status == "" {
				rows = attention(rows)
			}
			return printReport(c.out, rows)
		},
	}
	cmd.Flags().IntVar(&window, "window", 30, "days ahead that count as expiring soon")
	cmd.Flags().StringVar(&status, "status", "", "only show this status (expired, expiring_soon, valid, never_completed)")
	return cmd
}

func attention(rows []services.ReportRow) []services.ReportRow {
	out := rows[:0]
	for _, r := range rows {
		if r.Status == compliance.Expired || r.Status == compliance.ExpiringSoon {
			out = append(out, r)
		}
	}
	return out
}

func printReport(w io.Writer, rows []services.ReportRow) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "EMPLOYEE\tNAME\tCOURSE\tSTATUS\tEXPIRES\tDAYS")
	for _, r := range rows {
		expires, days := "-", "-"
		if r.ExpiresOn != nil {
			expires = r.ExpiresOn.String()
		}
		if r.DaysRemaining != nil {
			days = fmt.Sprint(*r.DaysRemaining)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.EmployeeNumber, r.EmployeeName, r.CourseName,
			strings.ReplaceAll(string(r.Status), "_", " "), expires, days)
	}
	return tw.Flush()
}
