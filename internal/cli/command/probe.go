package command

import (
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/spec-kit/storefront-devkit/internal/fixture"
	"github.com/spec-kit/storefront-devkit/internal/probe"
)

// ProbeCommand returns the probe command.
func ProbeCommand() *cli.Command {
	return &cli.Command{
		Name:      "probe",
		Usage:     "Check that a storefront serves static images",
		ArgsUsage: "[PATH...]",
		Description: "Probes the given paths, or the fixture's images when none are given.\n" +
			"Exits non-zero when any image is unavailable.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "base-url",
				Aliases: []string{"u"},
				Usage:   "Storefront base URL (default PROBE_BASE_URL)",
			},
			&cli.StringFlag{
				Name:    "fixture",
				Aliases: []string{"f"},
				Usage:   "Fixture file listing images (default SEED_FIXTURE_FILE)",
			},
		},
		Action: probeImages,
	}
}

func probeImages(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}

	baseURL := c.String("base-url")
	if baseURL == "" {
		baseURL = rt.cfg.Probe.BaseURL
	}

	paths := c.Args().Slice()
	if len(paths) == 0 {
		path := c.String("fixture")
		if path == "" {
			path = rt.cfg.Seed.FixtureFile
		}
		f, err := fixture.Load(path)
		if err != nil {
			return cli.Exit(err.Error(), ExitFailure)
		}
		paths = f.Images
	}
	if len(paths) == 0 {
		return cli.Exit("no image paths to probe", ExitFailure)
	}

	results, err := probe.NewProber(rt.cfg.Probe.Timeout(), rt.logger).Probe(c.Context, baseURL, paths)
	if err != nil {
		return cli.Exit(err.Error(), ExitFailure)
	}

	if ok, err := render(c, results); ok {
		if err != nil {
			return err
		}
	} else {
		tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "STATUS\tCODE\tTYPE\tBYTES\tPATH")
		for _, r := range results {
			state := "ok"
			if !r.Available {
				state = "missing"
			}
			fmt.Fprintf(tw, "%s\t%d\t%s\t%d\t%s\n", state, r.Status, r.ContentType, r.Bytes, r.Path)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if missing := probe.Missing(results); len(missing) > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d images unavailable", len(missing), len(results)), ExitFailure)
	}
	return nil
}
