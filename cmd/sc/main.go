// Package main provides the sc CLI, a Spotify playback controller for the
// terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/oauth2"

	"spotic/internal/auth"
	"spotic/internal/core"
	"spotic/internal/player"
	"spotic/internal/ui"
)

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sc",
	Short: "Spotify CLI controller",
	Long: `sc controls Spotify playback from the terminal: current track, pause and
resume, volume, search and play, device selection, shuffle and repeat.

The first invocation walks through authorizing the tool against your
Spotify account; afterwards the cached authorization is reused and
refreshed silently.`,
	SilenceUsage: true,
	RunE:         runRoot,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is spotic.env)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("client-id", "", "pre-supplied Spotify client ID (skips the prompt)")
	rootCmd.PersistentFlags().String("client-secret", "", "Spotify client secret (not needed with PKCE)")
	rootCmd.PersistentFlags().Int("callback-port", 8080, "local port for the OAuth callback")
	rootCmd.PersistentFlags().String("data-dir", "", "directory for credentials and tokens")
	rootCmd.PersistentFlags().Duration("device-cache-ttl", 0, "how long a confirmed device is trusted")

	rootCmd.Flags().Bool("authorize", false, "Run the authorization process")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}

	rootCmd.AddCommand(
		currentCmd,
		pauseCmd,
		resumeCmd,
		toggleCmd,
		volumeCmd,
		playCmd,
		searchCmd,
		nextCmd,
		prevCmd,
		shuffleCmd,
		repeatCmd,
		playlistCmd,
		deviceCmd,
	)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("spotic")
		viper.SetConfigType("env")
	}

	viper.SetEnvPrefix("SPOTIC")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}

	config = buildConfig()
	logger = buildLogger(config.Log.Level)
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	cfg.Auth.ClientID = viper.GetString("client-id")
	cfg.Auth.ClientSecret = viper.GetString("client-secret")
	cfg.Auth.DataDir = viper.GetString("data-dir")
	if port := viper.GetInt("callback-port"); port != 0 {
		cfg.Auth.CallbackPort = port
	}

	if ttl := viper.GetDuration("device-cache-ttl"); ttl != 0 {
		cfg.Device.CacheTTL = ttl
	}

	cfg.Log.Level = viper.GetString("log-level")

	return cfg
}

func buildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.WarnLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

func runRoot(cmd *cobra.Command, _ []string) error {
	authorize, err := cmd.Flags().GetBool("authorize")
	if err != nil {
		return err
	}

	if !authorize {
		return cmd.Help()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Forced flow, regardless of any cached authorization.
	_, err = newManager().RunFlow(ctx)
	return err
}

func newManager() *auth.Manager {
	store := auth.NewStore(config.Auth.DataDir)

	var creds auth.CredentialSource
	if config.Auth.ClientID != "" {
		creds = auth.StaticCredentials{
			ClientID:     config.Auth.ClientID,
			ClientSecret: config.Auth.ClientSecret,
		}
	} else {
		creds = ui.InteractiveCredentials{}
	}

	sessions := func(ctx context.Context, identity *auth.ClientIdentity, token *oauth2.Token) (*player.Session, error) {
		api := auth.NewAPIClient(ctx, &config.Auth, identity, token)
		cache := player.NewDeviceCache(&config.Device, logger.Named("devices"))

		return player.NewSession(api, cache, pickDevice, logger.Named("player")), nil
	}

	manager := auth.NewManager(&config.Auth, store, creds, sessions, logger.Named("auth"))
	manager.PromptCallbackURL = ui.CollectCallbackURL

	return manager
}

// resolveSession resumes the cached session or, when there is nothing to
// resume, runs the authorization flow.
func resolveSession(ctx context.Context) (*player.Session, error) {
	manager := newManager()

	session, err := manager.LoadCachedSession(ctx)
	if err != nil {
		return nil, err
	}

	if session != nil {
		return session, nil
	}

	return manager.RunFlow(ctx)
}

type sessionRunFunc func(ctx context.Context, session *player.Session, cmd *cobra.Command, args []string) error

// withSession wraps a command body with signal handling and session
// resolution.
func withSession(fn sessionRunFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		session, err := resolveSession(ctx)
		if err != nil {
			return err
		}

		return fn(ctx, session, cmd, args)
	}
}
