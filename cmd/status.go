package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show release posture of the current repository",
	Long:  "Show release posture of the current repository (branch, latest tag, commits since, suggested next tags)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, dbConn, err := buildService(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer func() { _ = dbConn.Close() }()

		st, err := svc.Status(cmd.Context())
		if err != nil {
			return err
		}
		dirty := ""
		if !st.Clean {
			dirty = " (dirty)"
		}
		fmt.Printf("branch:         %s%s\n", st.Branch, dirty)
		fmt.Printf("head:           %s\n", st.HeadSHA)
		if st.LatestTag == "" {
			fmt.Println("latest tag:     (none)")
		} else {
			fmt.Printf("latest tag:     %s (+%d commits)\n", st.LatestTag, st.CommitsSince)
		}
		fmt.Printf("dev version:    %s\n", st.DevVersion)
		fmt.Printf("next patch:     %s\n", st.NextPatch)
		fmt.Printf("next minor:     %s\n", st.NextMinor)
		fmt.Printf("next major:     %s\n", st.NextMajor)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
