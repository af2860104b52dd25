package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relr-dev/relr/internal/config"
	"github.com/relr-dev/relr/internal/db"
	"github.com/relr-dev/relr/internal/ghub"
	"github.com/relr-dev/relr/internal/store"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked releases",
	Long:  "List tracked releases. Example:\n  relr list --channel stable",
	RunE: func(cmd *cobra.Command, _ []string) error {
		remote, _ := cmd.Flags().GetBool("remote")
		if remote {
			return listRemote(cmd)
		}

		dbConn, err := db.InitDB()
		if err != nil {
			return err
		}
		defer func() { _ = dbConn.Close() }()

		r := store.NewRepository(dbConn)
		channel, _ := cmd.Flags().GetString("channel")
		filter, _ := cmd.Flags().GetString("filter")
		var rels []store.Release
		if filter != "" {
			rels, err = r.SearchReleases(filter)
		} else if channel != "" {
			rels, err = r.ListByChannel(channel)
		} else {
			rels, err = r.ListReleases()
		}
		if err != nil {
			return err
		}
		for _, rel := range rels {
			fmt.Printf("%s\t%s\t%s\t%s\n", rel.Tag, rel.Channel, rel.Status, rel.CreatedAt)
		}
		return nil
	},
}

// listRemote prints the releases GitHub knows about, registry aside.
func listRemote(cmd *cobra.Command) error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	if err := cfg.RequireGitHub(); err != nil {
		return err
	}
	c := ghub.NewClient(cfg.GitHub.APIURL, cfg.GitHub.Owner, cfg.GitHub.Repo, cfg.GitHub.Token)
	rels, err := c.ListReleases(cmd.Context())
	if err != nil {
		return err
	}
	for _, rel := range rels {
		kind := "release"
		if rel.Prerelease {
			kind = "prerelease"
		}
		if rel.Draft {
			kind = "draft"
		}
		fmt.Printf("%s\t%s\t%s\n", rel.TagName, kind, rel.HTMLURL)
	}
	return nil
}

func init() {
	listCmd.Flags().String("channel", "", "Filter by channel (stable or prerelease)")
	listCmd.Flags().String("filter", "", "Filter by text search over tag, version, commit and notes")
	listCmd.Flags().Bool("remote", false, "List GitHub releases instead of the local registry")
	rootCmd.AddCommand(listCmd)
}
