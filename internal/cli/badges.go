package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wellspring-health/wellspring/internal/daemon"
)

func init() {
	rootCmd.AddCommand(badgesCmd)
}

var badgesCmd = &cobra.Command{
	Use:   "badges [account-id]",
	Short: "List the badge catalog, or an account's earned badges",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBadges,
}

func runBadges(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	if len(args) == 0 {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tBONUS")
		for _, def := range d.Badges.Definitions() {
			fmt.Fprintf(w, "%s\t%s %s\t%d\n", def.ID, def.Icon, def.Name, def.Bonus)
		}
		return w.Flush()
	}

	earned, err := d.Badges.Badges(args[0])
	if err != nil {
		return err
	}
	if len(earned) == 0 {
		fmt.Println("No badges earned yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BADGE\tEARNED")
	for _, b := range earned {
		fmt.Fprintf(w, "%s\t%s\n", b.BadgeID, b.EarnedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
