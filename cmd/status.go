package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/zlv-data/geolink/internal/locprop"
)

var classLabels = map[int]string{
	1: "same commune",
	2: "same department",
	3: "same region",
	4: "metropolitan France",
	5: "overseas France",
	6: "foreign",
	7: "unknown",
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show pair resolution statistics",
	Long:  "Displays how many owner-housing pairs are resolved, the class distribution, and the top owner departments.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		pool, err := dbPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		topN, _ := cmd.Flags().GetInt("top-departments")

		report, err := locprop.NewPostgresStore(pool).StatusReport(ctx, topN)
		if err != nil {
			return eris.Wrap(err, "status")
		}

		formatStatusReport(os.Stdout, report)
		return nil
	},
}

// formatStatusReport writes the resolution summary to w.
func formatStatusReport(w io.Writer, r *locprop.StatusReport) {
	_, _ = fmt.Fprintf(w, "Pairs: %d total, %d resolved", r.Total, r.Resolved)
	if r.Total > 0 {
		_, _ = fmt.Fprintf(w, " (%.1f%%)", 100*float64(r.Resolved)/float64(r.Total))
	}
	_, _ = fmt.Fprintf(w, ", %d with distance\n", r.WithDistance)

	if len(r.Classes) > 0 {
		_, _ = fmt.Fprintln(w, "\nClass distribution:")
		for _, c := range r.Classes {
			_, _ = fmt.Fprintf(w, "  %d %-20s %d\n", c.Class, classLabels[c.Class], c.Count)
		}
	}

	if len(r.Departments) > 0 {
		_, _ = fmt.Fprintln(w, "\nTop owner departments:")
		for _, d := range r.Departments {
			_, _ = fmt.Fprintf(w, "  %-4s %d\n", d.Department, d.Count)
		}
	}
}

func init() {
	statusCmd.Flags().Int("top-departments", 10, "number of owner departments to list (0 = skip)")
	rootCmd.AddCommand(statusCmd)
}
