package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wellspring-health/wellspring/internal/daemon"
	"github.com/wellspring-health/wellspring/internal/domain"
)

func init() {
	rootCmd.AddCommand(awardCmd)
}

var awardCmd = &cobra.Command{
	Use:   "award <account-id> <activity-type>",
	Short: "Record a point-earning activity",
	Long: `Record a point-earning activity for an account.

Activity types: SYMPTOM_LOG, DAILY_CHECK_IN, CHALLENGE_COMPLETED,
FORUM_POST, FORUM_COMMENT, CHAT_SESSION.`,
	Args: cobra.ExactArgs(2),
	RunE: runAward,
}

func runAward(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	t := domain.ActivityType(strings.ToUpper(args[1]))
	result, err := d.Ledger.AwardPoints(args[0], t, nil)
	if err != nil {
		return err
	}

	fmt.Printf("Awarded %d points\n", result.TotalPointsAwarded)
	if result.TierChanged {
		fmt.Printf("Tier up! Now %s\n", result.NewTier)
	}
	for _, id := range result.BadgesUnlocked {
		fmt.Printf("Badge unlocked: %s\n", id)
	}
	return nil
}
