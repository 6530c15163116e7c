package main

import (
	"fmt"

	"github.com/aretw0/formwizard"
	"github.com/aretw0/formwizard/internal/validator"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [definition]",
	Short: "Check the wizard definition for consistency",
	Long: `Crawls the steps from the first one and reports missing targets, unreachable
steps, invalid fields, loops and split sub-step groups.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return err
		}
		if cfg.Definition == "" {
			return fmt.Errorf("no wizard definition given (use --definition or FORMWIZARD_DEFINITION)")
		}
		loader, err := formwizard.NewLoader(cfg.Definition)
		if err != nil {
			return err
		}
		def, err := loader.Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load definition: %w", err)
		}

		findings := validator.Inspect(def, cfg.FirstStep)
		out := cmd.OutOrStdout()
		for _, f := range findings {
			fmt.Fprintln(out, f.String())
		}
		if validator.HasErrors(findings) {
			return fmt.Errorf("validation failed")
		}
		fmt.Fprintln(out, "Wizard is valid!")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
