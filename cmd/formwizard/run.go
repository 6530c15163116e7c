package main

import (
	"github.com/aretw0/formwizard/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [definition]",
	Short: "Fill a wizard in the terminal",
	Long: `Walks through the wizard step by step. Without --session the run is ephemeral;
with it the session is resumed from and saved to the configured store.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return err
		}
		sessionID, _ := cmd.Flags().GetString("session")
		jsonMode, _ := cmd.Flags().GetBool("json")
		debug, _ := cmd.Flags().GetBool("debug")
		values, _ := cmd.Flags().GetString("values")
		fresh, _ := cmd.Flags().GetBool("fresh")

		sc := cli.NewSignalContext(cmd.Context())
		defer sc.Cancel()

		return cli.Execute(sc, cli.RunOptions{
			Config:    cfg,
			SessionID: sessionID,
			JSON:      jsonMode,
			Debug:     debug,
			Values:    values,
			Fresh:     fresh,
			In:        cmd.InOrStdin(),
			Out:       cmd.OutOrStdout(),
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("session", "s", "", "Persistent session ID")
	runCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON commands in, responses out)")
	runCmd.Flags().Bool("debug", false, "Log lifecycle events to stderr")
	runCmd.Flags().String("values", "", "JSON object of initial form values")
	runCmd.Flags().Bool("fresh", false, "Discard the stored session before starting")
}
