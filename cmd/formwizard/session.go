package main

import (
	"errors"

	"github.com/aretw0/formwizard/internal/cli"
	"github.com/aretw0/formwizard/internal/config"
	"github.com/aretw0/formwizard/internal/logging"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage persistent sessions",
	Long:  `List, inspect and remove sessions kept in the configured store (file or redis).`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer p.Close()
		return cli.ListSessions(cmd.Context(), p.Store, cmd.OutOrStdout())
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Inspect the state of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer p.Close()
		return cli.InspectSession(cmd.Context(), p.Store, args[0], cmd.OutOrStdout())
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer p.Close()

		var errs []error
		for _, id := range args {
			if err := cli.RemoveSession(cmd.Context(), p.Store, id, cmd.OutOrStdout()); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)
}

// openStore opens the configured store. An in-memory store holds nothing between
// runs, so the session commands fall back to the file store.
func openStore(cmd *cobra.Command) (*cli.Persistence, error) {
	cfg, err := config.Load(configFile(cmd), cmd.Flags())
	if err != nil {
		return nil, err
	}
	if cfg.Store == config.StoreMemory {
		cfg.Store = config.StoreFile
	}
	return cli.NewPersistence(cfg, logging.NewNop())
}

func configFile(cmd *cobra.Command) string {
	file, _ := cmd.Flags().GetString("config")
	return file
}
