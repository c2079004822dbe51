package main

import (
	"fmt"
	"os"

	"github.com/akulov/finbook/internal/cli"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var resetForce bool

func resetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all transactions for a user",
		Long: `Reset removes every transaction belonging to the user.

This is a destructive operation. Accounts, counterparties, groups, and
the sync credential are preserved; the next sync re-imports from the
feed's current window.`,
		RunE: runReset,
	}

	cmd.Flags().StringP("email", "u", "", "email of the owning user")
	cmd.Flags().BoolVarP(&resetForce, "force", "f", false, "Skip confirmation prompt")
	_ = viper.BindPFlag("reset.email", cmd.Flags().Lookup("email"))

	return cmd
}

func runReset(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	email := viper.GetString("reset.email")
	if email == "" {
		return fmt.Errorf("--email is required")
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	user, err := store.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}

	count, err := store.CountTransactions(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to count transactions: %w", err)
	}

	if count == 0 {
		fmt.Fprintln(os.Stdout, "No transactions found. Nothing to reset.")
		return nil
	}

	// Confirm with user unless --force is used
	if !resetForce {
		fmt.Fprintln(os.Stdout, cli.WarningStyle.Render(
			fmt.Sprintf("This will delete %d transactions for %s.", count, email)))
		fmt.Fprintf(os.Stdout, "\nAre you sure you want to continue? [y/N]: ")

		var response string
		if _, err := fmt.Scanln(&response); err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if response != "y" && response != "Y" {
			fmt.Fprintln(os.Stdout, "Reset canceled.")
			return nil
		}
	}

	deleted, err := store.DeleteAllTransactions(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to delete transactions: %w", err)
	}

	fmt.Fprintln(os.Stdout, cli.SuccessStyle.Render(fmt.Sprintf("Deleted %d transactions.", deleted)))

	return nil
}
