package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relr-dev/relr/internal/db"
	"github.com/relr-dev/relr/internal/store"
	"github.com/relr-dev/relr/internal/utils"
)

var prereleaseCmd = &cobra.Command{
	Use:   "prerelease",
	Short: "Manage per-PR preview builds",
	Long:  "Manage per-PR preview builds: publish, cleanup, list",
}

var prereleasePublishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish a prerelease for a pull request",
	Long: "Publish a prerelease for a pull request: push a derived prerelease tag, create a " +
		"GitHub prerelease and post the install link as a PR comment. Example:\n  relr prerelease publish --pr 42",
	RunE: func(cmd *cobra.Command, _ []string) error {
		pr, _ := cmd.Flags().GetInt("pr")
		if pr <= 0 {
			return fmt.Errorf("--pr is required and must be positive")
		}
		yes, _ := cmd.Flags().GetBool("yes")

		svc, dbConn, err := buildService(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer func() { _ = dbConn.Close() }()

		if !yes && !utils.Confirm(fmt.Sprintf("Publish a prerelease for PR #%d?", pr)) {
			fmt.Println("aborted")
			return nil
		}
		actions, err := svc.PublishPrerelease(cmd.Context(), pr)
		if err != nil {
			return err
		}
		for _, a := range actions {
			fmt.Printf("- %s\n", a)
		}
		return nil
	},
}

var prereleaseCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove the prereleases published for a closed pull request",
	RunE: func(cmd *cobra.Command, _ []string) error {
		pr, _ := cmd.Flags().GetInt("pr")
		if pr <= 0 {
			return fmt.Errorf("--pr is required and must be positive")
		}
		svc, dbConn, err := buildService(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer func() { _ = dbConn.Close() }()

		actions, err := svc.CleanupPrerelease(cmd.Context(), pr)
		if err != nil {
			return err
		}
		for _, a := range actions {
			fmt.Printf("- %s\n", a)
		}
		return nil
	},
}

var prereleaseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List prereleases that have not been cleaned up",
	RunE: func(_ *cobra.Command, _ []string) error {
		dbConn, err := db.InitDB()
		if err != nil {
			return err
		}
		defer func() { _ = dbConn.Close() }()

		r := store.NewRepository(dbConn)
		rels, err := r.ListOpenPrereleases()
		if err != nil {
			return err
		}
		if len(rels) == 0 {
			fmt.Println("no open prereleases")
			return nil
		}
		for _, rel := range rels {
			pr := "-"
			if rel.PRNumber.Valid {
				pr = fmt.Sprintf("#%d", rel.PRNumber.Int64)
			}
			fmt.Printf("%s\t%s\t%s\t%s\n", rel.Tag, pr, rel.Status, rel.CreatedAt)
		}
		return nil
	},
}

func init() {
	prereleasePublishCmd.Flags().Int("pr", 0, "Pull request number")
	prereleasePublishCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
	prereleaseCleanupCmd.Flags().Int("pr", 0, "Pull request number")
	prereleaseCmd.AddCommand(prereleasePublishCmd)
	prereleaseCmd.AddCommand(prereleaseCleanupCmd)
	prereleaseCmd.AddCommand(prereleaseListCmd)
	rootCmd.AddCommand(prereleaseCmd)
}
