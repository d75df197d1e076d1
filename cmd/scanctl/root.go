package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MikhailDrugie/se-attack-modeling/internal/api"
	"github.com/MikhailDrugie/se-attack-modeling/internal/config"
	"github.com/MikhailDrugie/se-attack-modeling/internal/creds"
	"github.com/MikhailDrugie/se-attack-modeling/internal/session"
)

var exit = os.Exit
var cfgFile string

// askOneFunc is swapped out in tests to avoid an interactive prompt.
var askOneFunc = func(p survey.Prompt, response interface{}, opts ...survey.AskOpt) error {
	return survey.AskOne(p, response, opts...)
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scanctl",
	Short: "Terminal client for the attack modeling scan platform",
	Long: `scanctl talks to the attack modeling backend: authenticate, queue
dynamic and SAST scans, follow their progress, browse findings and the
CWE knowledge base, and manage users.

Run without arguments to open the interactive dashboard.`,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\nscanctl crashed while running the command: %v\n", r)
			exit(1)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'scanctl --help' for usage.")
		exit(1)
	}
}

func init() {
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runDashboard(cmd)
	}
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/scanctl/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("server", "", "Backend base URL (overrides config and SCANCTL_SERVER_URL)")
	rootCmd.PersistentFlags().String("lang", "", "Response language: en or ru")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("server.url", rootCmd.PersistentFlags().Lookup("server"))
	viper.BindPFlag("lang", rootCmd.PersistentFlags().Lookup("lang"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	config.Load(cfgFile)

	level := slog.LevelWarn
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// newStore opens the on-disk credential store.
func newStore() (creds.Store, error) {
	path, err := creds.DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("resolve credential path: %w", err)
	}
	store, err := creds.NewFileStore(path)
	if err != nil {
		return nil, fmt.Errorf("open credential store: %w", err)
	}
	return store, nil
}

// newSessionFunc is swapped out in tests to point at a fixture backend.
var newSessionFunc = newSession

// newSession wires store, client and session manager together. The
// client's forced-logout hook feeds back into the session so a dead
// token never survives past the response that exposed it.
func newSession() (*session.Manager, *api.Client, error) {
	store, err := newStore()
	if err != nil {
		return nil, nil, err
	}
	client := api.NewClient(config.ServerURL(), store,
		api.WithTimeout(config.Timeout()),
		api.WithLogger(slog.Default()),
	)
	sess := session.NewManager(store, client, slog.Default())
	client.OnUnauthorized(sess.ForcedLogout)

	// Honor a --lang/config override by persisting it as the locale
	// preference; the client reads it per request.
	if lang := config.Lang(); lang != "" && lang != store.Locale() {
		if err := store.SetLocale(lang); err != nil {
			slog.Warn("persisting locale preference", "error", err)
		}
	}
	return sess, client, nil
}
