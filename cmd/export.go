package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/relr-dev/relr/internal/archive"
	"github.com/relr-dev/relr/internal/db"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the registry or single releases to portable files",
}

var exportDbCmd = &cobra.Command{
	Use:   "db --dst <path>",
	Short: "Export the active registry database to a file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		dst, _ := cmd.Flags().GetString("dst")
		// default destination when not provided: ./relr-YYYY-MM-DD.db (avoid overwrite by suffixing)
		if dst == "" {
			date := time.Now().UTC().Format("2006-01-02")
			base := fmt.Sprintf("relr-%s.db", date)
			dst = filepath.Join(".", base)
			si := 1
			for {
				if _, err := os.Stat(dst); os.IsNotExist(err) {
					break
				}
				dst = filepath.Join(".", fmt.Sprintf("relr-%s-%d.db", date, si))
				si++
			}
		}
		// ensure DB exists before copying
		dbConn, err := db.InitDB()
		if err != nil {
			return err
		}
		_ = dbConn.Close()
		if err := archive.ExportDatabase(dst); err != nil {
			return err
		}
		fmt.Printf("exported registry to %s\n", dst)
		return nil
	},
}

var exportReleaseCmd = &cobra.Command{
	Use:   "release <tag> --dst <path>",
	Short: "Export a single release and its history to a standalone SQLite file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tag := args[0]
		dst, _ := cmd.Flags().GetString("dst")
		if dst == "" {
			return fmt.Errorf("--dst is required")
		}
		dbConn, err := db.InitDB()
		if err != nil {
			return err
		}
		defer func() { _ = dbConn.Close() }()
		if err := archive.ExportRelease(dbConn, tag, dst); err != nil {
			return err
		}
		fmt.Printf("exported release %s to %s\n", tag, dst)
		return nil
	},
}

func init() {
	exportDbCmd.Flags().String("dst", "", "Destination file path for the exported registry")
	exportReleaseCmd.Flags().String("dst", "", "Destination file path for the exported release (required)")
	exportCmd.AddCommand(exportDbCmd)
	exportCmd.AddCommand(exportReleaseCmd)
	rootCmd.AddCommand(exportCmd)
}
