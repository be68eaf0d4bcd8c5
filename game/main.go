package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"judgement/common/config"
	"judgement/common/log"
	"judgement/game/app"
)

var (
	configFile string
	logLevel   string

	simPlayers int
	simGames   int
	simSeed    uint64
)

var rootCmd = &cobra.Command{
	Use:   "judgement",
	Short: "judgement card game server",
	Long:  `Real-time server for Judgement, a trick-taking game for 4 to 6 players.`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "run the websocket server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("logLevel") {
			cfg.Log.Level = logLevel
		}
		log.InitLog(cfg.AppName, cfg.Log.Level)
		log.Info("config: %+v", *cfg)
		return app.Run(context.Background(), cfg, configFile)
	},
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "play bot games in-process and print the standings",
	RunE: func(cmd *cobra.Command, args []string) error {
		log.InitLog("simulate", logLevel)
		results, err := app.Simulate(cmd.Context(), app.SimulateOptions{
			Players: simPlayers,
			Games:   simGames,
			Seed:    simSeed,
		})
		if err != nil {
			return err
		}
		return app.RenderStandings(cmd.OutOrStdout(), results)
	},
}

func init() {
	serveCmd.Flags().StringVar(&configFile, "config", "", "config file (yaml); defaults are used when empty")
	rootCmd.PersistentFlags().StringVar(&logLevel, "logLevel", "warn", "debug, info, warn or error")

	simulateCmd.Flags().IntVar(&simPlayers, "players", 4, "players per game (4-6)")
	simulateCmd.Flags().IntVar(&simGames, "games", 1, "number of games")
	simulateCmd.Flags().Uint64Var(&simSeed, "seed", 1, "seed for shuffles and bot choices")

	rootCmd.AddCommand(serveCmd, simulateCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Error("error happen: %v", err)
		os.Exit(1)
	}
}
