package main

import (
	"fmt"
	"os"
	"time"

	"github.com/akulov/finbook/internal/cli"
	"github.com/akulov/finbook/internal/common"
	"github.com/akulov/finbook/internal/planfact"
	"github.com/akulov/finbook/internal/sync"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import transactions from PlanFact now",
		Long: `Run one on-demand sync cycle for a user outside the scheduler's timer.

The API key is persisted as the user's credential, so the background
scheduler picks the account up on its next pass.

Per-credential locking is process-local: do not run this command while a
serve process is syncing the same user, or the two cycles can race on
entity creation. Use the web API's import action instead when the server
is up.`,
		RunE: runImport,
	}

	cmd.Flags().StringP("email", "u", "", "email of the owning user")
	cmd.Flags().StringP("api-key", "k", "", "PlanFact API key")
	cmd.Flags().Int("page-limit", sync.DefaultPageLimit, "operations fetched per page")

	_ = viper.BindPFlag("import.email", cmd.Flags().Lookup("email"))
	_ = viper.BindPFlag("import.api_key", cmd.Flags().Lookup("api-key"))
	_ = viper.BindPFlag("import.page_limit", cmd.Flags().Lookup("page-limit"))

	return cmd
}

func runImport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	email := viper.GetString("import.email")
	apiKey := viper.GetString("import.api_key")
	if email == "" || apiKey == "" {
		return fmt.Errorf("both --email and --api-key are required")
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

	feedOpts := []planfact.Option{}
	if baseURL := viper.GetString("planfact.base_url"); baseURL != "" {
		feedOpts = append(feedOpts, planfact.WithBaseURL(baseURL))
	}
	feed := planfact.NewClient(feedOpts...)

	importer := sync.NewImporter(store, feed, sync.Config{
		PageLimit: viper.GetInt("import.page_limit"),
	})

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Importing operations"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)

	quit := make(chan struct{})
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-quit:
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}()

	inserted, err := importer.ImportNow(ctx, apiKey, user.ID)
	close(quit)
	_ = bar.Finish()
	if err != nil {
		return common.NewUserError("import failed", err)
	}

	fmt.Fprintln(os.Stdout, cli.SuccessStyle.Render(fmt.Sprintf("Imported %d new transactions for %s", inserted, email)))

	return nil
}
