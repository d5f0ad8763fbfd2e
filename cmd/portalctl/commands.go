package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	appMigrations "github.com/yigit/nhance/internal/app/migrations"
	"github.com/yigit/nhance/internal/app/models"
	appRepos "github.com/yigit/nhance/internal/app/repositories"
	"github.com/yigit/nhance/internal/app/session"
	"github.com/yigit/nhance/internal/bootstrap"
	"github.com/yigit/nhance/internal/config"
	"github.com/yigit/nhance/internal/db"
	"github.com/yigit/nhance/pkg/portalclient"
)

// env is what database backed commands share
type env struct {
	cfg      *config.Config
	logger   zerolog.Logger
	database *db.PostgresDB
	repos    *appRepos.Repositories
}

// withDatabase loads config, connects and hands over to fn. The pool is
// closed when fn returns.
func withDatabase(c *cli.Context, fn func(ctx context.Context, e *env) error) error {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(c.String("config"))
	if err != nil {
		return err
	}
	ctx := c.Context
	database, err := bootstrap.OpenDatabase(ctx, cfg, lgr)
	if err != nil {
		return err
	}
	defer database.Close()

	return fn(ctx, &env{
		cfg:      cfg,
		logger:   lgr,
		database: database,
		repos:    appRepos.NewRepositories(database.Pool),
	})
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "apply pending schema migrations",
		Action: func(c *cli.Context) error {
			return withDatabase(c, func(ctx context.Context, e *env) error {
				if err := appMigrations.NewMigrator(e.database, e.logger).Migrate(ctx); err != nil {
					return err
				}
				fmt.Fprintln(c.App.Writer, "migrations applied")
				return nil
			})
		},
		Subcommands: []*cli.Command{
			{
				Name:  "status",
				Usage: "list migrations and when they were applied",
				Action: func(c *cli.Context) error {
					return withDatabase(c, func(ctx context.Context, e *env) error {
						statuses, err := appMigrations.NewMigrator(e.database, e.logger).Status(ctx)
						if err != nil {
							return err
						}
						w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
						fmt.Fprintln(w, "VERSION\tFILE\tAPPLIED AT")
						for _, s := range statuses {
							applied := "pending"
							if s.Applied && s.AppliedAt != nil {
								applied = s.AppliedAt.Format(time.RFC3339)
							}
							fmt.Fprintf(w, "%s\t%s\t%s\n", s.Version, s.File, applied)
						}
						return w.Flush()
					})
				},
			},
		},
	}
}

func adminCommand() *cli.Command {
	setAdmin := func(isAdmin bool) cli.ActionFunc {
		return func(c *cli.Context) error {
			address := c.Args().First()
			if address == "" {
				return cli.Exit("an email address is required", 2)
			}
			return withDatabase(c, func(ctx context.Context, e *env) error {
				authService := bootstrap.NewAuthService(e.cfg, e.repos, bootstrap.NewJWTService(e.cfg), e.logger)
				user, err := authService.SetAdmin(ctx, address, isAdmin)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "%s (id %d) admin=%t\n", user.Email, user.ID, user.IsAdmin)
				return nil
			})
		}
	}

	return &cli.Command{
		Name:  "admin",
		Usage: "manage the admin flag on profiles",
		Subcommands: []*cli.Command{
			{Name: "grant", Usage: "make a user an admin", ArgsUsage: "<email>", Action: setAdmin(true)},
			{Name: "revoke", Usage: "remove admin rights", ArgsUsage: "<email>", Action: setAdmin(false)},
		},
	}
}

func reconcileCommand() *cli.Command {
	return &cli.Command{
		Name:  "reconcile",
		Usage: "run one pass of the blob journal reconciler",
		Action: func(c *cli.Context) error {
			return withDatabase(c, func(ctx context.Context, e *env) error {
				transfer, _, err := bootstrap.SetupStorage(ctx, e.cfg, e.logger)
				if err != nil {
					return err
				}
				report, err := bootstrap.NewReconciler(e.cfg, e.repos, transfer, e.logger).RunOnce(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "examined=%d resolved=%d unrecoverable=%d failed=%d\n",
					report.Examined, report.Resolved, report.Unrecoverable, report.Failed)
				return nil
			})
		},
	}
}

func blobOpsCommand() *cli.Command {
	return &cli.Command{
		Name:  "blob-ops",
		Usage: "list blob journal entries",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "status", Usage: "pending, done, failed, resolved or unrecoverable"},
			&cli.IntFlag{Name: "limit", Value: 50},
		},
		Action: func(c *cli.Context) error {
			status := models.BlobOpStatus(strings.ToLower(c.String("status")))
			if status != "" && !status.Valid() {
				return cli.Exit(fmt.Sprintf("unknown status %q", c.String("status")), 2)
			}
			return withDatabase(c, func(ctx context.Context, e *env) error {
				ops, total, err := e.repos.BlobOperationRepository.List(ctx, status, 0, c.Int("limit"))
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tKIND\tRESOURCE\tRECORD\tSTATUS\tATTEMPTS\tUPDATED")
				for _, op := range ops {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%s\n",
						op.ID, op.Kind, op.Resource, op.RecordID, op.Status, op.Attempts, op.UpdatedAt.Format(time.RFC3339))
				}
				if err := w.Flush(); err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "%d of %d shown\n", len(ops), total)
				return nil
			})
		},
	}
}

func tokensCommand() *cli.Command {
	return &cli.Command{
		Name:  "tokens",
		Usage: "maintain stored tokens",
		Subcommands: []*cli.Command{
			{
				Name:  "cleanup",
				Usage: "delete expired refresh and verification tokens",
				Action: func(c *cli.Context) error {
					return withDatabase(c, func(ctx context.Context, e *env) error {
						authService := bootstrap.NewAuthService(e.cfg, e.repos, bootstrap.NewJWTService(e.cfg), e.logger)
						removed, err := authService.CleanupExpiredTokens(ctx)
						if err != nil {
							return err
						}
						fmt.Fprintf(c.App.Writer, "%d expired tokens removed\n", removed)
						return nil
					})
				},
			},
		},
	}
}

func sessionCommand() *cli.Command {
	return &cli.Command{
		Name:  "session",
		Usage: "exercise the session lifecycle against a running server",
		Subcommands: []*cli.Command{
			{
				Name:  "check",
				Usage: "sign in, print each session transition and optionally resolve a path",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "url", Value: "http://localhost:8080", EnvVars: []string{"NHANCE_URL"}},
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", EnvVars: []string{"NHANCE_PASSWORD"}},
					&cli.StringFlag{Name: "path", Usage: "client path to resolve once signed in"},
					&cli.DurationFlag{Name: "timeout", Value: 15 * time.Second},
				},
				Action: runSessionCheck,
			},
		},
	}
}

func runSessionCheck(c *cli.Context) error {
	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()

	client := portalclient.New(c.String("url"), session.NewTracker())
	_, err := client.Start(ctx, func(s session.Snapshot) {
		if s.User != nil {
			fmt.Fprintf(c.App.Writer, "state=%s user=%s branch=%s admin=%t\n", s.State, s.User.Email, s.User.Branch, s.User.IsAdmin)
			return
		}
		fmt.Fprintf(c.App.Writer, "state=%s\n", s.State)
	})
	if err != nil {
		return err
	}

	if _, err := client.Login(ctx, c.String("email"), c.String("password")); err != nil {
		return err
	}
	defer func() {
		if err := client.Logout(ctx); err != nil {
			fmt.Fprintf(c.App.ErrWriter, "logout failed: %v\n", err)
		}
	}()

	if path := c.String("path"); path != "" {
		res, err := client.ResolveRoute(ctx, path)
		if err != nil {
			return err
		}
		if res.Location != "" {
			fmt.Fprintf(c.App.Writer, "%s -> %s %s\n", res.Path, res.Action, res.Location)
		} else {
			fmt.Fprintf(c.App.Writer, "%s -> %s (%s)\n", res.Path, res.Action, res.Route)
		}
	}
	return nil
}
