package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"synergia-backend/lib/configutil"
	"synergia-backend/lib/restyutil"
	"synergia-backend/lib/scrapers/synergia/core"
	"synergia-backend/lib/serviceutil"
	"synergia-backend/lib/telemetry"

	"github.com/spf13/cobra"
)

var (
	logLevel *string
	format   *string
	httpDump *string
)

var rootCmd = &cobra.Command{
	Use:   "synergia-cli",
	Short: "synergia-cli scrapes absences, grades and messages out of the Synergia school portal.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(parseLogLevel(*logLevel))
	},
}

func init() {
	logLevel = rootCmd.PersistentFlags().String(
		"log", "error", "Logging verbosity: debug|info|warning|error|critical.")
	format = rootCmd.PersistentFlags().String(
		"format", "json", "Output format: json|table.")
	httpDump = rootCmd.PersistentFlags().String(
		"http-dump", "", "Directory to dump raw HTTP request/response pairs to (debugging).")
}

func parseLogLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warning", "warn":
		return slog.LevelWarn
	case "critical":
		return slog.LevelError + 4
	default:
		return slog.LevelError
	}
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Credentials come from the environment first; a synergia.json5 config
// file next to the binary can fill in whatever the environment leaves
// unset.
type Credentials struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func readCredentials() Credentials {
	creds := Credentials{
		Login:    os.Getenv("LIBRUS_LOGIN"),
		Password: os.Getenv("LIBRUS_PASSWORD"),
	}
	if creds.Login != "" && creds.Password != "" {
		return creds
	}

	fromFile, err := configutil.ReadConfig[Credentials]("synergia.json5")
	if err == nil {
		if creds.Login == "" {
			creds.Login = fromFile.Login
		}
		if creds.Password == "" {
			creds.Password = fromFile.Password
		}
	}

	if creds.Login == "" || creds.Password == "" {
		serviceutil.Fatal(
			"login credentials are not set",
			fmt.Errorf("set LIBRUS_LOGIN and LIBRUS_PASSWORD or provide synergia.json5"),
		)
	}
	return creds
}

// newClient builds an authorized portal client or exits.
func newClient(ctx context.Context) *core.Client {
	creds := readCredentials()

	client, err := core.NewClient(ctx, core.ClientOptions{})
	if err != nil {
		serviceutil.Fatal("failed to initialize portal client", err)
	}
	if *httpDump != "" {
		client.SetDebugOutput(restyutil.NewFilesystemOutput(*httpDump))
	}

	cookies, err := client.Authorize(ctx, creds.Login, creds.Password)
	if err != nil {
		serviceutil.Fatal("failed to authorize", err)
	}
	slog.Info("authorization successful", "cookies", len(cookies))

	return client
}
