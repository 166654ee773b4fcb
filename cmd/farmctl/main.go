// Command farmctl is a small CLI for poking the smart farm bridge from a
// terminal, without opening the dashboard.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	logLevel = "warn"
	server   = "http://localhost:8000"
)

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	return nil
}

func main() {
	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "farmctl",
		Short:        "farmctl controls the smart farm gantry through the farmsrv bridge",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setupLogger()
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", logLevel, "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVarP(&server, "server", "s", server, "base URL of the farmsrv bridge")

	cmd.AddCommand(
		NewStatusCommand(),
		NewTreeCommand(),
		NewPumpCommand(),
		NewHomeCommand(),
		NewMoveCommand(),
		NewRecalibrateCommand(),
	)

	return cmd
}
