package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wellspring-health/wellspring/internal/daemon"
)

func init() {
	rootCmd.AddCommand(summaryCmd)
}

var summaryCmd = &cobra.Command{
	Use:   "summary <account-id>",
	Short: "Show an account's points standing",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	s, err := d.Ledger.GetPointsSummary(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Tier: %s (next at %d lifetime points)\n", s.Tier, s.NextTierThreshold)
	fmt.Printf("Points: %d spendable / %d lifetime\n", s.CurrentPoints, s.LifetimePoints)
	fmt.Printf("Streak: %d days\n", s.StreakDays)
	fmt.Printf("Today: %d points\n", s.TodayPoints)
	fmt.Printf("Badges: %d\n", len(s.Badges))

	if len(s.RecentActivities) > 0 {
		fmt.Println()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "WHEN\tTYPE\tPOINTS\tDESCRIPTION")
		for _, a := range s.RecentActivities {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
				a.Timestamp.Format("2006-01-02 15:04"),
				a.Type,
				a.Points,
				a.Description,
			)
		}
		return w.Flush()
	}
	return nil
}
