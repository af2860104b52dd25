package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relr-dev/relr/internal/gitx"
	"github.com/relr-dev/relr/internal/semtag"
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Inspect and derive version tags",
	Long:  "Inspect and derive version tags: validate, next",
}

var tagValidateCmd = &cobra.Command{
	Use:   "validate <tag>",
	Short: "Check that a tag follows the vX.Y.Z convention",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		t, err := semtag.Parse(args[0])
		if err != nil {
			return err
		}
		kind := "release"
		if t.IsPrerelease() {
			kind = "prerelease"
		}
		fmt.Printf("%s is a valid %s tag (version %s)\n", t, kind, t.Version)
		return nil
	},
}

var tagNextCmd = &cobra.Command{
	Use:   "next",
	Short: "Print the next tag derived from the latest reachable tag",
	RunE: func(cmd *cobra.Command, _ []string) error {
		part, _ := cmd.Flags().GetString("bump")
		g, err := gitx.Open(cmd.Context(), ".")
		if err != nil {
			return err
		}
		raw, ok, err := g.LatestTag(cmd.Context())
		if err != nil {
			return err
		}
		if !ok {
			raw = "v0.0.0"
		}
		base, err := semtag.Parse(raw)
		if err != nil {
			return err
		}
		next, err := semtag.Bump(base, part)
		if err != nil {
			return err
		}
		fmt.Println(next)
		return nil
	},
}

func init() {
	tagNextCmd.Flags().String("bump", "patch", "Version part to bump: major, minor or patch")
	tagCmd.AddCommand(tagValidateCmd)
	tagCmd.AddCommand(tagNextCmd)
	rootCmd.AddCommand(tagCmd)
}
