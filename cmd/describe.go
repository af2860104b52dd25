package cmd

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relr-dev/relr/internal/db"
	"github.com/relr-dev/relr/internal/store"
)

var describeCmd = &cobra.Command{
	Use:   "describe <tag>",
	Short: "Show details for a tracked release",
	Long:  "Show details for a tracked release. --set-notes replaces its notes first.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tag := args[0]
		dbConn, err := db.InitDB()
		if err != nil {
			return err
		}
		defer func() { _ = dbConn.Close() }()

		r := store.NewRepository(dbConn)
		rel, err := r.GetReleaseByTag(tag)
		if err != nil {
			return err
		}
		if rel == nil {
			return fmt.Errorf("release not tracked: %s", tag)
		}
		if cmd.Flags().Changed("set-notes") {
			notes, _ := cmd.Flags().GetString("set-notes")
			if err := r.SetNotes(rel.ID, notes); err != nil {
				return err
			}
			rel.Notes = sql.NullString{String: notes, Valid: true}
		}
		fmt.Printf("tag:       %s\n", rel.Tag)
		fmt.Printf("version:   %s\n", rel.Version)
		fmt.Printf("commit:    %s\n", rel.CommitSHA)
		if rel.Branch.Valid {
			fmt.Printf("branch:    %s\n", rel.Branch.String)
		}
		fmt.Printf("channel:   %s\n", rel.Channel)
		fmt.Printf("status:    %s\n", rel.Status)
		if rel.PRNumber.Valid {
			fmt.Printf("pr:        #%d\n", rel.PRNumber.Int64)
		}
		if rel.ArtifactURL.Valid {
			fmt.Printf("artifact:  %s\n", rel.ArtifactURL.String)
		}
		if rel.AuthorName.Valid {
			fmt.Printf("author:    %s\n", rel.AuthorName.String)
		}
		fmt.Printf("created:   %s\n", rel.CreatedAt)
		if rel.PublishedAt.Valid {
			fmt.Printf("published: %s\n", rel.PublishedAt.String)
		}
		if rel.Notes.Valid && rel.Notes.String != "" {
			fmt.Printf("notes:\n%s\n", rel.Notes.String)
		}
		return nil
	},
}

func init() {
	describeCmd.Flags().String("set-notes", "", "Replace the release notes before printing")
	rootCmd.AddCommand(describeCmd)
}
