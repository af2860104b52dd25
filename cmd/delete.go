package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relr-dev/relr/internal/db"
	"github.com/relr-dev/relr/internal/store"
	"github.com/relr-dev/relr/internal/utils"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <tag>",
	Short: "Remove a release record from the local registry",
	Long: "Remove a release record (and its event history) from the local registry. " +
		"The git tag and any GitHub release are untouched.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tag := args[0]
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !utils.Confirm(fmt.Sprintf("Delete registry record for %s?", tag)) {
			fmt.Println("aborted")
			return nil
		}
		dbConn, err := db.InitDB()
		if err != nil {
			return err
		}
		defer func() { _ = dbConn.Close() }()

		r := store.NewRepository(dbConn)
		if err := r.DeleteRelease(tag); err != nil {
			return err
		}
		fmt.Printf("deleted registry record for %s\n", tag)
		return nil
	},
}

func init() {
	deleteCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}
