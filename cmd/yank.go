package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relr-dev/relr/internal/db"
	"github.com/relr-dev/relr/internal/store"
	"github.com/relr-dev/relr/internal/utils"
)

var yankCmd = &cobra.Command{
	Use:   "yank <tag>",
	Short: "Mark a tracked release as yanked",
	Long: "Mark a tracked release as yanked, keeping its history. " +
		"The git tag and any GitHub release are untouched.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tag := args[0]
		reason, _ := cmd.Flags().GetString("reason")
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !utils.Confirm(fmt.Sprintf("Mark %s as yanked?", tag)) {
			fmt.Println("aborted")
			return nil
		}
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
		detail := fmt.Sprintf(`{"reason":%q}`, reason)
		if err := r.SetStatus(rel.ID, store.StatusYanked, store.OpYank, detail); err != nil {
			return err
		}
		fmt.Printf("marked %s as yanked\n", tag)
		return nil
	},
}

func init() {
	yankCmd.Flags().String("reason", "", "Why the release was yanked")
	yankCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(yankCmd)
}
