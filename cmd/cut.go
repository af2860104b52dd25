package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relr-dev/relr/internal/orchestrate"
	"github.com/relr-dev/relr/internal/utils"
)

var cutCmd = &cobra.Command{
	Use:   "cut",
	Short: "Tag HEAD and publish a release",
	Long: "Tag HEAD with the next vX.Y.Z tag, push it, and create the GitHub release " +
		"that triggers the wheel build workflow. Example:\n  relr cut --bump minor",
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts := orchestrate.CutOptions{}
		opts.Tag, _ = cmd.Flags().GetString("tag")
		opts.Bump, _ = cmd.Flags().GetString("bump")
		opts.Notes, _ = cmd.Flags().GetString("notes")
		opts.Draft, _ = cmd.Flags().GetBool("draft")
		opts.DryRun, _ = cmd.Flags().GetBool("dry-run")
		opts.Force, _ = cmd.Flags().GetBool("force")
		yes, _ := cmd.Flags().GetBool("yes")

		svc, dbConn, err := buildService(cmd.Context(), !opts.DryRun)
		if err != nil {
			return err
		}
		defer func() { _ = dbConn.Close() }()

		if opts.DryRun {
			actions, tag, err := svc.CutPlan(cmd.Context(), opts)
			if err != nil {
				return err
			}
			fmt.Printf("dry run for %s:\n", tag)
			for _, a := range actions {
				fmt.Printf("- %s\n", a)
			}
			return nil
		}

		_, tag, err := svc.CutPlan(cmd.Context(), opts)
		if err != nil {
			return err
		}
		if !yes && !utils.Confirm(fmt.Sprintf("Tag and publish %s?", tag)) {
			fmt.Println("aborted")
			return nil
		}
		actions, err := svc.Cut(cmd.Context(), opts)
		if err != nil {
			return err
		}
		for _, a := range actions {
			fmt.Printf("- %s\n", a)
		}
		return nil
	},
}

func init() {
	cutCmd.Flags().String("tag", "", "Exact tag to cut (vX.Y.Z); overrides --bump")
	cutCmd.Flags().String("bump", "patch", "Version part to bump: major, minor or patch")
	cutCmd.Flags().String("notes", "", "Release notes body")
	cutCmd.Flags().Bool("draft", false, "Create the GitHub release as a draft")
	cutCmd.Flags().Bool("dry-run", false, "Print the actions without performing them")
	cutCmd.Flags().Bool("force", false, "Skip the clean work tree check")
	cutCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(cutCmd)
}
