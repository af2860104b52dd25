package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relr-dev/relr/internal/archive"
	"github.com/relr-dev/relr/internal/db"
)

var importCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Merge releases from another relr database",
	Long:  "Merge releases from another relr database into the active registry. Tags already tracked are skipped.",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		src := args[0]
		dbConn, err := db.InitDB()
		if err != nil {
			return err
		}
		defer func() { _ = dbConn.Close() }()

		imported, skipped, err := archive.ImportDatabase(dbConn, src)
		if err != nil {
			return err
		}
		fmt.Printf("imported %d release(s), skipped %d already tracked\n", imported, skipped)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
