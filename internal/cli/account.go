package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wellspring-health/wellspring/internal/daemon"
)

func init() {
	rootCmd.AddCommand(accountCmd)
}

var accountCmd = &cobra.Command{
	Use:   "account <account-id>",
	Short: "Create an account",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccount,
}

func runAccount(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	acct, err := d.Ledger.CreateAccount(args[0], time.Now())
	if err != nil {
		return err
	}

	fmt.Printf("Created account %s (tier: %s)\n", acct.ID, acct.Tier)
	return nil
}
