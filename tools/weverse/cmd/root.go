package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	weverse "github.com/halcyoned/weverse/internal"
	"github.com/halcyoned/weverse/pkg/client"
	"github.com/halcyoned/weverse/pkg/storage/sqlite"
	"github.com/halcyoned/weverse/tools/weverse/internal/cli"
	cliconfig "github.com/halcyoned/weverse/tools/weverse/internal/config"
	"github.com/halcyoned/weverse/tools/weverse/internal/update"
)

var (
	// cfg stores the application configuration.
	cfg *cliconfig.Config
	// appClient is the client used to interact with the platform API.
	appClient *client.Client
	// console is the CLI console for output.
	console *cli.Console
	// fileLogger is the logger for writing logs to a file.
	fileLogger *log.Logger
	// database is the archive of seen notifications and downloads.
	database *sqlite.DB
	// flagConfigPath is the path to the config file.
	flagConfigPath string
	// flagQuiet enables or disables quiet mode.
	flagQuiet bool
	// version is the version of the application. It is set at build time.
	version string
)

// SetVersion sets the version of the application.
func SetVersion(v string) {
	version = v
	if rootCmd != nil {
		rootCmd.Version = v
	}
}

var rootCmd = &cobra.Command{
	Use:   "weverse [command]",
	Short: "A sync and archival client for the Weverse fan platform.",
	Long: `A sync and archival client for the Weverse fan platform.

Run 'weverse listen' to poll for notifications continuously, or use a
specific command. For example:
  weverse communities
  weverse posts 14 --pages 2
  weverse download 14`,
	Args: cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Do not run hooks for completion, edit, or debug commands
		isLightweightCmd := false
		lightweightCommands := []string{"completion", "edit", "debug", "update"}
		for c := cmd; c != nil; c = c.Parent() {
			for _, lwCmd := range lightweightCommands {
				if c.Name() == lwCmd {
					isLightweightCmd = true
					break
				}
			}
			if isLightweightCmd {
				break
			}
		}

		if cmd.Name() == "completion" {
			return nil
		}

		if !isLightweightCmd {
			cleanLogs, _ := cmd.Flags().GetBool("clean-logs")

			var err error
			fileLogger, err = setupFileLogger(cleanLogs, cfg)
			if err != nil {
				return fmt.Errorf("failed to set up file logger: %w", err)
			}

			// If debug is enabled, write to both file and stderr.
			if val, _ := cmd.Flags().GetBool("debug"); val {
				mw := io.MultiWriter(fileLogger.Writer(), os.Stderr)
				fileLogger.SetOutput(mw)
			}

			database, err = sqlite.New(cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("error initializing archive database: %w", err)
			}

			creds := weverse.Credentials{
				Username: cfg.Username,
				Password: cfg.Password,
				Token:    cfg.Token,
			}
			appClient, err = client.New(&cfg.Config, creds, fileLogger)
			if err != nil {
				return fmt.Errorf("error creating client: %w", err)
			}
		}

		// Update check runs for commands that did the full setup.
		if !isLightweightCmd && cfg.CheckForUpdates {
			latestVersion, err := update.CheckForUpdate(version)
			if err != nil {
				// Non-fatal, just warn the user.
				console.Warn("Update check failed: %v", err)
			} else if latestVersion != "" {
				if cfg.AutoUpdate {
					console.Info("New version available (%s). Auto-updating...", latestVersion)
					if err := update.ApplyUpdate(console, version); err != nil {
						console.Error("Auto-update failed: %v", err)
					}
					// Exit after attempting update, successful or not. User should re-run.
					os.Exit(0)
				} else {
					console.Warn("A new version of weverse is available: %s. Run 'weverse update' to upgrade.", console.Bold.Sprint(latestVersion))
				}
			}
		}

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if appClient != nil {
			_ = appClient.Listen(client.ListenOptions{Enabled: false})
		}
		if database != nil {
			return database.Close()
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// The daemon is the default command.
		return runListen(cmd, args)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// init initializes the command line interface.
func init() {
	console = cli.New(false)

	cobra.OnInitialize(func() {
		if val, err := rootCmd.Flags().GetBool("quiet"); err == nil && val {
			flagQuiet = true
			console = cli.New(true)
		}

		var err error
		if val, err := rootCmd.Flags().GetString("config"); err == nil {
			flagConfigPath = val
		}

		cfg, err = cliconfig.Load(flagConfigPath)
		if err != nil {
			console.Error("Error loading config: %v", err)
			os.Exit(1)
		}

		applyFlagOverrides(rootCmd, cfg)
	})

	rootCmd.Version = version
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	// Define persistent flags that are available to all subcommands.
	rootCmd.PersistentFlags().StringVarP(&flagConfigPath, "config", "c", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Quiet mode, no console output except for errors")
	rootCmd.PersistentFlags().Bool("debug", false, "Log debug info to stderr and log file")
	rootCmd.PersistentFlags().Bool("clean-logs", false, "Redact credentials and usernames from log files")

	rootCmd.PersistentFlags().StringP("dir", "d", "", "Directory to save attachments (overrides config)")
	rootCmd.PersistentFlags().String("username", "", "Account email for the password login (overrides config)")
	rootCmd.PersistentFlags().String("password", "", "Account password (overrides config)")
	rootCmd.PersistentFlags().String("token", "", "Bearer access token (overrides config)")
	rootCmd.PersistentFlags().String("poll-interval", "", `Polling interval for the listen daemon, e.g. "30s" (overrides config)`)
	rootCmd.PersistentFlags().IntP("workers", "w", 0, "Number of concurrent download workers (overrides config)")
	rootCmd.PersistentFlags().Bool("download-attachments", false, "Download post photos and media videos while listening (overrides config)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log raw API responses (overrides config)")

	// Add subcommands.
	rootCmd.AddCommand(listenCmd)
	rootCmd.AddCommand(communitiesCmd)
	rootCmd.AddCommand(postsCmd)
	rootCmd.AddCommand(notificationsCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(debugCmd)
	rootCmd.AddCommand(updateCmd)
}

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}
