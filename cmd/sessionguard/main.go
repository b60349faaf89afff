package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/zenthea/sessionguard/internal/interfaces/cli/migrate"
	"github.com/zenthea/sessionguard/internal/interfaces/cli/server"
	"github.com/zenthea/sessionguard/internal/interfaces/cli/token"
	"github.com/zenthea/sessionguard/internal/shared/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "sessionguard",
		Short:   "SessionGuard - session inactivity timeout service",
		Long:    `SessionGuard signs users out after a period of inactivity, warning them before it does.`,
		Version: version.Get().Version,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		token.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
