package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/wurkwurk/internal/cli"
	"github.com/julianstephens/wurkwurk/internal/webapp"
)

// endpoint returns override, or the configured web app URL.
func endpoint(ctx *cli.Context, override string) (string, error) {
	if u := strings.TrimSpace(override); u != "" {
		return u, nil
	}
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return "", fmt.Errorf("failed to get settings: %w", err)
	}
	if settings.WebAppURL == "" {
		return "", fmt.Errorf("%s (use --url or 'wurkwurk settings --web-app-url')", webapp.Message(webapp.ErrNoURL))
	}
	return settings.WebAppURL, nil
}

type TestCmd struct {
	URL string `help:"Web app URL to test instead of the configured one."`
}

func (c *TestCmd) Run(ctx *cli.Context) error {
	u, err := endpoint(ctx, c.URL)
	if err != nil {
		return err
	}
	runCtx := context.Background()
	if err := ctx.WebApp(runCtx).Test(runCtx, u); err != nil {
		return fmt.Errorf("connection test failed: %s: %w", webapp.Message(err), err)
	}
	fmt.Printf("%s Connected to %s\n", cli.Mark(true), u)
	return nil
}

type DiagnoseCmd struct {
	URL  string `help:"Web app URL to diagnose instead of the configured one."`
	JSON bool   `name:"json" help:"Print the report as JSON."`
}

var errDiagnosticsFailed = errors.New("diagnostics found problems")

func (c *DiagnoseCmd) Run(ctx *cli.Context) error {
	u, err := endpoint(ctx, c.URL)
	if err != nil {
		return err
	}
	runCtx := context.Background()
	report := ctx.WebApp(runCtx).Diagnose(runCtx, u)

	if c.JSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	} else {
		rows := make([][]string, len(report.Checks))
		for i, chk := range report.Checks {
			rows[i] = []string{cli.Mark(chk.Success), chk.Name, chk.Message}
		}
		fmt.Println(cli.TitleStyle.Render("Web app diagnostics"))
		fmt.Println(cli.Table([]string{"", "Check", "Result"}, rows))
	}

	if report.OverallStatus != "success" {
		return errDiagnosticsFailed
	}
	return nil
}
