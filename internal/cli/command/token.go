package command

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/spec-kit/storefront-devkit/internal/api/dto"
	"github.com/spec-kit/storefront-devkit/internal/service"
	"github.com/spec-kit/storefront-devkit/internal/session"
)

// TokenCommand returns the token subcommand group.
func TokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Issue and verify session tokens",
		Subcommands: []*cli.Command{
			{
				Name:  "issue",
				Usage: "Issue a session token",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "subject",
						Aliases:  []string{"s"},
						Usage:    "Subject (user) ID",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:    "claim",
						Aliases: []string{"c"},
						Usage:   "Claim as KEY=VALUE; VALUE is read as JSON when it parses, else as a string",
					},
					&cli.Int64Flag{
						Name:    "ttl",
						Aliases: []string{"t"},
						Usage:   "Lifetime in seconds (default SESSION_TTL_SECONDS)",
					},
					&cli.BoolFlag{
						Name:  "persist",
						Usage: "Store the token in Redis under the subject",
					},
				},
				Action: tokenIssue,
			},
			{
				Name:      "verify",
				Usage:     "Verify a session token",
				ArgsUsage: "TOKEN",
				Action:    tokenVerify,
			},
		},
	}
}

func tokenIssue(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}

	claims, err := parseClaims(c.StringSlice("claim"))
	if err != nil {
		return cli.Exit(err.Error(), ExitFailure)
	}
	if c.IsSet("ttl") && c.Int64("ttl") <= 0 {
		return cli.Exit("--ttl must be positive", ExitFailure)
	}

	issued, err := rt.sessions.Issue(c.Context, service.IssueRequest{
		SubjectID:  c.String("subject"),
		Claims:     claims,
		TTLSeconds: c.Int64("ttl"),
		Persist:    c.Bool("persist"),
	})
	if err != nil {
		return cli.Exit(fmt.Sprintf("issue token: %v", err), ExitFailure)
	}

	out := dto.IssueSessionResponse{
		Token:     issued.Token,
		Session:   dto.NewSessionResponse(issued.Session),
		Persisted: issued.Persisted,
	}
	if ok, err := render(c, out); ok {
		return err
	}
	fmt.Fprintln(c.App.Writer, issued.Token)
	return nil
}

func tokenVerify(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}
	if c.NArg() != 1 {
		return cli.Exit("usage: devkit token verify TOKEN", ExitFailure)
	}

	sess, err := rt.sessions.Verify(c.Context, strings.TrimSpace(c.Args().First()))
	if err != nil {
		return cli.Exit(fmt.Sprintf("token rejected (%s): %v", session.Outcome(err), err), ExitRejected)
	}

	out := dto.NewSessionResponse(sess)
	if ok, err := render(c, out); ok {
		return err
	}
	w := c.App.Writer
	fmt.Fprintf(w, "subject:    %s\n", out.SubjectID)
	fmt.Fprintf(w, "id:         %s\n", out.ID)
	fmt.Fprintf(w, "issued_at:  %s\n", out.IssuedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "expires_at: %s\n", out.ExpiresAt.Format(time.RFC3339))
	keys := make([]string, 0, len(out.Claims))
	for k := range out.Claims {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "claim %s = %v\n", k, out.Claims[k])
	}
	return nil
}

func parseClaims(pairs []string) (session.Claims, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	claims := make(session.Claims, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid claim %q, want KEY=VALUE", pair)
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		claims[key] = value
	}
	return claims, nil
}
