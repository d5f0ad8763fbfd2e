// Command portalctl runs maintenance tasks against an nhance deployment:
// schema migrations, admin grants, blob journal reconciliation and session
// checks against a running server.
package main

import (
	"os"

	"github.com/urfave/cli/v2"
	"github.com/yigit/nhance/internal/bootstrap"
	"github.com/yigit/nhance/internal/pkg/logger"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Error().Err(err).Msg("portalctl failed")
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "portalctl",
		Usage: "administer an nhance deployment",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   bootstrap.DefaultConfigPath,
				Usage:   "path to the YAML config file",
				EnvVars: []string{"NHANCE_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			migrateCommand(),
			adminCommand(),
			reconcileCommand(),
			blobOpsCommand(),
			tokensCommand(),
			sessionCommand(),
		},
	}
}
