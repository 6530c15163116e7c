package main

import (
	"fmt"
	"os"
	"time"

	"github.com/aretw0/formwizard/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "formwizard",
	Short: "formwizard drives multi-step form wizards",
	Long: `formwizard runs multi-step form wizards described in YAML, JSON or a directory
of step documents. Wizards can be filled in the terminal, driven as JSON lines,
served over HTTP or exposed to agents through MCP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Config file (default ./formwizard.yml)")
	pf.StringP("definition", "d", "", "Wizard definition: a .yaml/.json file or a directory of step documents")
	pf.String("log-level", "info", "Log level: debug, info, warn, error or off")
	pf.String("log-format", "text", "Log format: text or json")
	pf.String("store", config.StoreMemory, "Session store: memory, file or redis")
	pf.String("session-dir", ".formwizard/sessions", "Directory of the file session store")
	pf.String("redis-addr", "localhost:6379", "Address of the redis session store")
	pf.Int("redis-db", 0, "Database of the redis session store")
	pf.Duration("session-ttl", 24*time.Hour, "Expiry of redis sessions")
	pf.String("first-step", "1", "Key of the first step")
}

// loadConfig resolves the configuration for cmd. A positional argument stands for
// --definition unless the flag was given.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(file, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if len(args) > 0 && !cmd.Flags().Changed("definition") {
		cfg.Definition = args[0]
	}
	return cfg, nil
}
