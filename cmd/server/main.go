package main

import (
	"fmt"
	"log"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"wikirace/internal/config"
	"wikirace/internal/server"
)

const releaseVersion = "1.0.0"

func main() {
	log.SetFlags(0)
	_ = godotenv.Load()

	cfg := config.Default()
	cobra.CheckErr(newCmd(&cfg).Execute())
}

func newCmd(cfg *config.Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("WIKIRACE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:     "wikirace-server",
		Short:   "Lobby server for the Wikipedia race game.",
		Args:    cobra.ExactArgs(0),
		Version: releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv, err := server.New(*cfg)
			if err != nil {
				return err
			}
			return srv.Run(ctx)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.Bind, "bind", "b", cfg.Bind, "address to bind to (env: WIKIRACE_BIND)")
	fs.IntVarP(&cfg.Port, "port", "p", cfg.Port, "TCP port to listen on (env: WIKIRACE_PORT)")
	fs.BoolVar(&cfg.Headless, "headless", false, "disable the interactive admin console (env: WIKIRACE_HEADLESS)")
	fs.StringVar(&cfg.JoinPolicy, "join-policy", cfg.JoinPolicy, "unknown lobby codes: open auto-creates, strict rejects (env: WIKIRACE_JOIN_POLICY)")
	fs.StringVar(&cfg.ScoringMode, "scoring", cfg.ScoringMode, "rank by cumulative points or per-round score (env: WIKIRACE_SCORING)")
	fs.IntVar(&cfg.FoldPenalty, "fold-penalty", cfg.FoldPenalty, "score penalty for folding a round (env: WIKIRACE_FOLD_PENALTY)")
	fs.IntVar(&cfg.ForfeitPenalty, "forfeit-penalty", cfg.ForfeitPenalty, "flat score for forfeiting a round (env: WIKIRACE_FORFEIT_PENALTY)")
	fs.IntVar(&cfg.CountdownSecs, "countdown", cfg.CountdownSecs, "seconds between all-ready and round start (env: WIKIRACE_COUNTDOWN)")
	fs.StringVar(&cfg.StatsFile, "stats-file", cfg.StatsFile, "path to the player stats file (env: WIKIRACE_STATS_FILE)")
	fs.StringVar(&cfg.DatabaseURL, "database-url", "", "postgres URL for stats storage instead of the stats file (env: WIKIRACE_DATABASE_URL)")
	fs.StringVar(&cfg.WikiURL, "wiki-url", cfg.WikiURL, "MediaWiki api.php endpoint, default English Wikipedia (env: WIKIRACE_WIKI_URL)")
	fs.BoolVar(&cfg.Discovery, "discovery", false, "broadcast server presence on the LAN (env: WIKIRACE_DISCOVERY)")
	fs.IntVar(&cfg.DiscoveryPort, "discovery-port", cfg.DiscoveryPort, "UDP port for LAN discovery broadcasts (env: WIKIRACE_DISCOVERY_PORT)")
	fs.BoolVar(&cfg.LegacyResetOnEmpty, "legacy-reset-on-empty", false, "wipe all stats whenever a lobby empties, for compatibility testing (env: WIKIRACE_LEGACY_RESET_ON_EMPTY)")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "display additional output (env: WIKIRACE_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("wikirace-server v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
