package main

import (
	"fmt"
	"strings"

	"github.com/oxjadex/catchme--catchyou/config"
	"github.com/oxjadex/catchme--catchyou/game"
	"github.com/oxjadex/catchme--catchyou/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const releaseVersion = "1.0.0"

// PORT is what most process managers inject
var envAliases = map[string][]string{
	"port": {"CATCHME_PORT", "PORT"},
}

func newCmd(cfg *config.Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("CATCHME")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var role string

	cmd := &cobra.Command{
		Use:     "catchme",
		Short:   "Real-time multiplayer draw-and-guess room.",
		Args:    cobra.ExactArgs(0),
		Version: releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Role = config.Role(role)
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := logger.Setup(cfg.LogLevel, cfg.PrettyLogs); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.Bind, "bind", "b", "0.0.0.0", "address to bind to (env: CATCHME_BIND)")
	fs.IntVarP(&cfg.Port, "port", "p", 3000, "port to listen on (env: PORT, CATCHME_PORT)")
	fs.StringVar(&cfg.Room, "room", "main", "name of the room served by this cluster (env: CATCHME_ROOM)")
	fs.StringVar(&role, "role", string(config.RoleStandalone), "standalone, coordinator or worker (env: CATCHME_ROLE)")
	fs.IntVar(&cfg.MaxPlayers, "max-players", game.MaxPlayers, "room capacity (env: CATCHME_MAX_PLAYERS)")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", "", "redis host:port shared by all workers (env: CATCHME_REDIS_ADDR)")
	fs.IntVar(&cfg.RedisDB, "redis-db", 0, "redis database (env: CATCHME_REDIS_DB)")
	fs.StringVar(&cfg.PostgresURL, "postgres-url", "", "postgres url of the chat history store (env: CATCHME_POSTGRES_URL)")
	fs.StringSliceVar(&cfg.AllowedOrigins, "allowed-origins", nil, "comma separated list of allowed browser origins (env: CATCHME_ALLOWED_ORIGINS)")
	fs.StringVar(&cfg.KeywordsFile, "keywords-file", "", "file with one keyword per line (env: CATCHME_KEYWORDS_FILE)")
	fs.IntVar(&cfg.AuditQueue, "audit-queue", 1024, "pending audit writes before entries are dropped (env: CATCHME_AUDIT_QUEUE)")
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "trace, debug, info, warn or error (env: CATCHME_LOG_LEVEL)")
	fs.BoolVar(&cfg.PrettyLogs, "pretty-logs", false, "human readable console logs (env: CATCHME_PRETTY_LOGS)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		if names, ok := envAliases[f.Name]; ok {
			_ = v.BindEnv(append([]string{f.Name}, names...)...)
		} else {
			_ = v.BindEnv(f.Name)
		}
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("catchme v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
