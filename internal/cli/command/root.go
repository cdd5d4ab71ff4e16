// Package command provides the devkit CLI commands.
//
// Commands share one runtime built from environment configuration in the
// app's Before hook. Logs go to stderr unless LOG_OUTPUT says otherwise;
// command results go to the app writer.
package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/juju/clock"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spec-kit/storefront-devkit/internal/config"
	"github.com/spec-kit/storefront-devkit/internal/events"
	"github.com/spec-kit/storefront-devkit/internal/observability"
	"github.com/spec-kit/storefront-devkit/internal/persistence"
	"github.com/spec-kit/storefront-devkit/internal/repository"
	"github.com/spec-kit/storefront-devkit/internal/service"
	"github.com/spec-kit/storefront-devkit/internal/session"
)

// Build information, set via ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
)

const runtimeKey = "runtime"

// Exit codes.
const (
	ExitFailure  = 1
	ExitRejected = 2
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "devkit",
		Usage:   "Storefront session and fixture tooling",
		Version: fmt.Sprintf("%s (commit: %s)", Version, Commit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output format: text, json, yaml",
				Value:   "text",
			},
		},
		Commands: []*cli.Command{
			TokenCommand(),
			SeedCommand(),
			ProbeCommand(),
			AuditCommand(),
		},
		Before: setup,
		After:  teardown,
	}
}

type runtime struct {
	cfg      *config.Config
	logger   *zap.Logger
	redis    *persistence.Redis
	events   events.Dispatcher
	audit    *service.AuditService
	sessions *service.SessionService
}

func setup(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return cli.Exit(fmt.Sprintf("load config: %v", err), ExitFailure)
	}
	if _, ok := os.LookupEnv("LOG_OUTPUT"); !ok {
		cfg.Logger.Output = "stderr"
	}
	cfg.Logger.Name = "devkit"

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return cli.Exit(fmt.Sprintf("init logger: %v", err), ExitFailure)
	}

	tokens, err := session.NewTokenService(cfg.Session.Secret, clock.WallClock)
	if err != nil {
		return cli.Exit(err.Error(), ExitFailure)
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	dispatcher := events.NewInMemoryDispatcher()
	rt := &runtime{
		cfg:    cfg,
		logger: logger,
		redis:  redis,
		events: dispatcher,
		audit:  service.NewAuditService(dispatcher, repository.NewAuditRepository(redis.Client), logger, cfg.Audit),
		sessions: service.NewSessionService(cfg.Session, service.SessionDependencies{
			Tokens:   tokens,
			Sessions: repository.NewSessionRepository(redis.Client, cfg.Session.KeyPrefix),
			Events:   dispatcher,
			Logger:   logger,
		}),
	}

	if c.App.Metadata == nil {
		c.App.Metadata = map[string]any{}
	}
	c.App.Metadata[runtimeKey] = rt
	return nil
}

func teardown(c *cli.Context) error {
	if rt, ok := c.App.Metadata[runtimeKey].(*runtime); ok {
		rt.redis.Close()
		_ = rt.logger.Sync()
	}
	return nil
}

func runtimeFrom(c *cli.Context) (*runtime, error) {
	rt, ok := c.App.Metadata[runtimeKey].(*runtime)
	if !ok {
		return nil, errors.New("runtime not initialized")
	}
	return rt, nil
}

// render writes v in the selected structured format. It reports false for text
// output so the caller can print its own layout.
func render(c *cli.Context, v any) (bool, error) {
	switch format := c.String("output"); format {
	case "json":
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case "yaml":
		return true, writeYAML(c.App.Writer, v)
	case "text", "":
		return false, nil
	default:
		return true, cli.Exit(fmt.Sprintf("unknown output format %q", format), ExitFailure)
	}
}

// writeYAML round-trips through JSON so the json tags drive field names.
func writeYAML(w io.Writer, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var generic any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return err
	}
	return enc.Close()
}
