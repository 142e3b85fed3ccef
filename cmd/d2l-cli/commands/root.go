package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"valence/internal/components/db"
	"valence/internal/components/telemetry"
	"valence/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const serviceName = "d2l-cli"

var rootCmd = &cobra.Command{
	Use:           "d2l-cli",
	Short:         "d2l-cli is a CLI for scraping and caching Brightspace (D2L) course data.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		v := viperForCmd(cmd)
		cfg, err := resolveConfig(v)
		if err != nil {
			return err
		}
		telemetry.InitSlog(os.Stderr, cfg.LogLevel, cfg.LogFormat)

		shutdown, err := telemetry.SetupOtel(cmd.Context(), serviceName, cfg.Otlp)
		if err != nil {
			slog.Warn("failed to setup otel", "err", err)
		}
		cmd.SetContext(withState(cmd.Context(), &state{
			cfg:      cfg,
			tel:      telemetry.SlogAPI{},
			dumpDir:  v.GetString("dump-http"),
			shutdown: shutdown,
		}))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		s := getState(cmd.Context())
		if s == nil || s.shutdown == nil {
			return nil
		}
		return s.shutdown(context.Background())
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to the config file, by default d2l.json5 is searched for from the cwd upwards.")
	flags.String("base-url", "", "The LMS origin, eg. https://learn.example.edu")
	flags.StringToString("cookie", nil, "A session cookie (name=value), may be repeated.")
	flags.String("timezone", "", "Overrides the timezone scraped from the LMS.")
	flags.String("cache-file", "", "Path to the sqlite cache database.")
	flags.String("redis-addr", "", "Use the redis server at this address as the cache store.")
	flags.String("log-level", "", "One of debug, info, warn or error.")
	flags.String("log-format", "", "One of text or json.")
	flags.String("dump-http", "", "Write every LMS request and response into this directory.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// viperForCmd binds a command's flags and D2L_ prefixed environment
// variables to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("D2L")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// resolveConfig reads the config file and layers flags and environment
// variables on top of it. A missing config file is not an error unless it
// was asked for explicitly.
func resolveConfig(v *viper.Viper) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if path := v.GetString("config"); path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
		if errors.Is(err, os.ErrNotExist) {
			cfg, err = config.WithDefaults(config.Config{}), nil
		}
	}
	if err != nil {
		return config.Config{}, fmt.Errorf("read config: %w", err)
	}

	if value := v.GetString("base-url"); value != "" {
		cfg.BaseUrl = value
	}
	if value := v.GetString("timezone"); value != "" {
		cfg.Timezone = value
	}
	if value := v.GetString("cache-file"); value != "" {
		cfg.Cache = db.Config{File: value}
	}
	if value := v.GetString("redis-addr"); value != "" {
		cfg.Redis.Addr = value
	}
	if value := v.GetString("log-level"); value != "" {
		cfg.LogLevel = value
	}
	if value := v.GetString("log-format"); value != "" {
		cfg.LogFormat = value
	}
	cookies := v.GetStringMapString("cookie")
	if len(cookies) > 0 && cfg.Cookies == nil {
		cfg.Cookies = map[string]string{}
	}
	for name, value := range cookies {
		cfg.Cookies[name] = value
	}
	return cfg, nil
}
