package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relr-dev/relr/internal/userprofile"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show or set the fallback author identity",
	Long:  "Show or set the author identity used when git config carries none",
	RunE: func(cmd *cobra.Command, _ []string) error {
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		clear, _ := cmd.Flags().GetBool("clear")

		if clear {
			if err := userprofile.Clear(); err != nil {
				return err
			}
			fmt.Println("profile cleared")
			return nil
		}
		if name != "" || email != "" {
			if err := userprofile.Set(userprofile.Profile{Name: name, Email: email}); err != nil {
				return err
			}
			fmt.Println("profile saved")
			return nil
		}
		p, ok, err := userprofile.Get()
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("no profile set")
			return nil
		}
		fmt.Printf("%s <%s>\n", p.Name, p.Email)
		return nil
	},
}

func init() {
	whoamiCmd.Flags().String("name", "", "Author name to persist")
	whoamiCmd.Flags().String("email", "", "Author email to persist")
	whoamiCmd.Flags().Bool("clear", false, "Remove the persisted profile")
	rootCmd.AddCommand(whoamiCmd)
}
