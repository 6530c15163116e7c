package main

import (
	"fmt"

	"github.com/aretw0/formwizard/internal/cli"
	"github.com/aretw0/formwizard/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph [definition]",
	Short: "Export the step graph visualization",
	Long: `Outputs a Mermaid flowchart of the wizard's steps and branches.
With --session the steps visited by that session are highlighted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return err
		}
		logger, err := cli.NewLogger(cfg.LogLevel, cfg.LogFormat, false)
		if err != nil {
			return err
		}
		engine, err := cli.NewEngine(cfg, logger)
		if err != nil {
			return err
		}

		var overlay *graph.Overlay
		if id, _ := cmd.Flags().GetString("session"); id != "" {
			p, err := cli.NewPersistence(cfg, logger)
			if err != nil {
				return err
			}
			defer p.Close()
			state, err := p.Manager.Load(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to load session %q: %w", id, err)
			}
			overlay = graph.OverlayFromState(state)
		}

		reg := engine.Registry()
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(reg.Steps(), reg.FirstKey(), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("session", "s", "", "Highlight the path of this session")
}
