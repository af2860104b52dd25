package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/relr-dev/relr/internal/config"
	"github.com/relr-dev/relr/internal/db"
	"github.com/relr-dev/relr/internal/ghub"
	"github.com/relr-dev/relr/internal/gitx"
	"github.com/relr-dev/relr/internal/logx"
	"github.com/relr-dev/relr/internal/orchestrate"
	"github.com/relr-dev/relr/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "relr",
	Short: "relr is a tag-driven release workflow helper",
	Long:  "relr automates vX.Y.Z release tags, GitHub releases and per-PR prereleases",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("relr: run 'relr --help' to see available commands")
	},
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildService assembles the orchestration service for the current working
// directory. The returned DB must be closed by the caller. With requireHub
// set, missing GitHub configuration is an error instead of a degraded hub.
func buildService(ctx context.Context, requireHub bool) (*orchestrate.Service, *sql.DB, error) {
	cfg, err := config.Load("")
	if err != nil {
		return nil, nil, err
	}
	g, err := gitx.Open(ctx, ".")
	if err != nil {
		return nil, nil, err
	}
	var hub orchestrate.Hub
	if cfg.GitHub.Owner != "" && cfg.GitHub.Repo != "" && cfg.GitHub.Token != "" {
		hub = ghub.NewClient(cfg.GitHub.APIURL, cfg.GitHub.Owner, cfg.GitHub.Repo, cfg.GitHub.Token)
	}
	if requireHub && hub == nil {
		return nil, nil, cfg.RequireGitHub()
	}
	dbConn, err := db.InitDB()
	if err != nil {
		return nil, nil, err
	}
	logger := logx.New(cfg.Log.Level, cfg.Log.Format)
	svc := orchestrate.NewService(g, hub, store.NewRepository(dbConn), cfg, logger)
	return svc, dbConn, nil
}
