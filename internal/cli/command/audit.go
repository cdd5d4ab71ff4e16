package command

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/spec-kit/storefront-devkit/internal/service"
)

// AuditCommand returns the audit command.
func AuditCommand() *cli.Command {
	return &cli.Command{
		Name:  "audit",
		Usage: "List recent session events from the audit trail",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Value:   20,
				Usage:   "Maximum number of events",
			},
		},
		Action: auditList,
	}
}

func auditList(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}
	if c.Int("limit") <= 0 {
		return cli.Exit("--limit must be positive", ExitFailure)
	}

	ctx, cancel := context.WithTimeout(c.Context, connectTimeout)
	err = rt.redis.Connect(ctx)
	cancel()
	if err != nil {
		return cli.Exit(err.Error(), ExitFailure)
	}

	entries, err := rt.audit.Recent(c.Context, c.Int("limit"))
	if errors.Is(err, service.ErrAuditDisabled) {
		return cli.Exit("audit trail disabled", ExitFailure)
	}
	if err != nil {
		return cli.Exit(err.Error(), ExitFailure)
	}

	if ok, err := render(c, entries); ok {
		return err
	}
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tTYPE\tSUBJECT\tPAYLOAD")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Timestamp, e.Type, e.SubjectID, e.Payload)
	}
	return tw.Flush()
}
