package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relr-dev/relr/internal/db"
	"github.com/relr-dev/relr/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history <tag>",
	Short: "Show the event history for a tracked release",
	Long:  "Show the event history for a tracked release (sequence, timestamps, operation)",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		tag := args[0]
		dbConn, err := db.InitDB()
		if err != nil {
			return err
		}
		defer func() { _ = dbConn.Close() }()

		r := store.NewRepository(dbConn)
		events, err := r.ListEventsByTag(tag)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Printf("no history for %s\n", tag)
			return nil
		}
		for _, ev := range events {
			fmt.Printf("#%d\t%s\t%s\t%s\n", ev.Seq, ev.CreatedAt, ev.Operation, ev.Detail)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
