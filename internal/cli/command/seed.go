package command

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/spec-kit/storefront-devkit/internal/api/dto"
	"github.com/spec-kit/storefront-devkit/internal/fixture"
	"github.com/spec-kit/storefront-devkit/internal/repository"
)

const connectTimeout = 5 * time.Second

// SeedCommand returns the seed command.
func SeedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Write fixture records to Redis and issue the subject's session token",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "fixture",
				Aliases: []string{"f"},
				Usage:   "Fixture file (default SEED_FIXTURE_FILE)",
			},
		},
		Action: seed,
	}
}

type seedOutput struct {
	Keys    []string             `json:"keys"`
	Token   string               `json:"token,omitempty"`
	Session *dto.SessionResponse `json:"session,omitempty"`
}

func seed(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}

	path := c.String("fixture")
	if path == "" {
		path = rt.cfg.Seed.FixtureFile
	}
	f, err := fixture.Load(path)
	if err != nil {
		return cli.Exit(err.Error(), ExitFailure)
	}

	ctx, cancel := context.WithTimeout(c.Context, connectTimeout)
	err = rt.redis.Connect(ctx)
	cancel()
	if err != nil {
		return cli.Exit(err.Error(), ExitFailure)
	}
	// Seeding is the one command that always has Redis, so its events join the audit trail.
	rt.audit.RegisterHandlers()

	seeder := fixture.NewSeeder(rt.cfg.Seed, repository.NewRecordRepository(rt.redis.Client), rt.sessions, rt.events, rt.logger)
	report, err := seeder.Seed(c.Context, f)
	if err != nil {
		return cli.Exit(fmt.Sprintf("seed %s: %v (%d keys written)", path, err, len(report.Keys)), ExitFailure)
	}

	out := seedOutput{Keys: report.Keys, Token: report.Token}
	if report.Session != nil {
		sess := dto.NewSessionResponse(report.Session)
		out.Session = &sess
	}
	if ok, err := render(c, out); ok {
		return err
	}
	for _, key := range out.Keys {
		fmt.Fprintf(c.App.Writer, "wrote %s\n", key)
	}
	if out.Token != "" {
		fmt.Fprintf(c.App.Writer, "token %s\n", out.Token)
	}
	return nil
}
