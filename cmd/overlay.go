package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relr-dev/relr/internal/config"
	"github.com/relr-dev/relr/internal/overlay"
)

var overlayCmd = &cobra.Command{
	Use:   "overlay",
	Short: "Convert a project to tag-driven versioning",
	Long: "Convert a wheel-shipping extension project to tag-driven versioning: " +
		"rewrite pyproject.toml for hatch-vcs, add a _version fallback to the package, " +
		"and remove workflow files the tag-driven flow replaces.",
}

var overlayPlanCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show what 'overlay apply' would change",
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts, err := overlayOptions(cmd)
		if err != nil {
			return err
		}
		actions, err := overlay.Plan(opts)
		if err != nil {
			return err
		}
		for _, a := range actions {
			fmt.Printf("- %s\n", a)
		}
		return nil
	},
}

var overlayApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply the tag-driven versioning conversion",
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts, err := overlayOptions(cmd)
		if err != nil {
			return err
		}
		opts.DryRun, _ = cmd.Flags().GetBool("dry-run")
		actions, err := overlay.Apply(opts)
		if err != nil {
			return err
		}
		if len(actions) == 0 {
			fmt.Println("nothing to do")
			return nil
		}
		for _, a := range actions {
			fmt.Printf("- %s\n", a)
		}
		return nil
	},
}

func overlayOptions(cmd *cobra.Command) (overlay.Options, error) {
	root, _ := cmd.Flags().GetString("root")
	pkg, _ := cmd.Flags().GetString("package")
	if pkg == "" {
		cfg, err := config.Load(root)
		if err != nil {
			return overlay.Options{}, err
		}
		pkg = cfg.Project.Package
	}
	return overlay.Options{Root: root, Package: pkg}, nil
}

func init() {
	for _, c := range []*cobra.Command{overlayPlanCmd, overlayApplyCmd} {
		c.Flags().String("root", ".", "Project root containing pyproject.toml")
		c.Flags().String("package", "", "Python package directory (defaults to project.package from config)")
	}
	overlayApplyCmd.Flags().Bool("dry-run", false, "Behave like 'overlay plan'")
	overlayCmd.AddCommand(overlayPlanCmd)
	overlayCmd.AddCommand(overlayApplyCmd)
	rootCmd.AddCommand(overlayCmd)
}
