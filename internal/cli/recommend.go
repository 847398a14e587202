package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wellspring-health/wellspring/internal/daemon"
)

func init() {
	recommendCmd.Flags().IntVar(&recommendCount, "count", 3, "How many recommendations to return")
	rootCmd.AddCommand(recommendCmd)
}

var recommendCount int

var recommendCmd = &cobra.Command{
	Use:   "recommend <account-id>",
	Short: "Generate challenge recommendations",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecommend,
}

func runRecommend(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	recs, err := d.Scorer.GenerateRecommendations(context.Background(), args[0], nil, recommendCount)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Println("No recommendations available right now.")
		return nil
	}

	for i, r := range recs {
		fmt.Printf("%d. [%s] %s\n", i+1, r.Candidate.Type, r.Candidate.Description)
		fmt.Printf("   %s · %d pts · ~%d min · confidence %.0f\n",
			r.AdaptedDifficulty, r.AdaptedPoints, r.EstimatedCompletionTimeMinutes, r.ConfidenceScore)
		fmt.Printf("   %s\n", r.Reasoning)
	}
	return nil
}
