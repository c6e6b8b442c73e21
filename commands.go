package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cppla/socialquest/ai"
	"github.com/cppla/socialquest/config"
	"github.com/cppla/socialquest/engine"
	"github.com/cppla/socialquest/utils"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "socialquest",
	Short:         "Gamified relationship tracker backend",
	SilenceUsage: true,
	// Serving is the default action
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API with graceful restart support",
	RunE:  runServe,
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score an interaction with the configured scorer",
	Long: `Score an interaction the way the server would.

Uses the Gemini model when GEMINI_API_KEY is set and falls back to the local
formula on any model failure.`,
	RunE: runScore,
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a JWT for a player key",
	RunE:  runToken,
}

var (
	scoreType     string
	scoreDuration float64
	scoreQuality  string
	scoreNotes    string

	tokenPlayer string
	tokenTTL    time.Duration
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to config.json")

	scoreCmd.Flags().StringVar(&scoreType, "type", string(engine.TypeText), "interaction type: text, call, hangout, event, other")
	scoreCmd.Flags().Float64Var(&scoreDuration, "duration", 0, "duration in hours")
	scoreCmd.Flags().StringVar(&scoreQuality, "quality", string(engine.QualityNeutral), "positive, neutral or negative")
	scoreCmd.Flags().StringVar(&scoreNotes, "notes", "", "free-text notes passed to the model")

	tokenCmd.Flags().StringVar(&tokenPlayer, "player", "", "player key the token grants access to")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 30*24*time.Hour, "token lifetime")
	_ = tokenCmd.MarkFlagRequired("player")

	rootCmd.AddCommand(serveCmd, scoreCmd, tokenCmd)
}

func loadConfig() (config.AppConfig, error) {
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return config.AppConfig{}, err
	}
	if err := utils.InitLogger(cfg); err != nil {
		return config.AppConfig{}, err
	}
	return cfg, nil
}

func runScore(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	req := engine.ScoreRequest{
		Notes:    scoreNotes,
		Type:     engine.InteractionType(scoreType),
		Duration: scoreDuration,
		Quality:  engine.Quality(scoreQuality),
	}
	if !req.Type.Valid() || !req.Quality.Valid() || req.Duration < 0 {
		return fmt.Errorf("%w: type=%q quality=%q duration=%v", engine.ErrInvalidInteraction, scoreType, scoreQuality, scoreDuration)
	}

	var scorer engine.Scorer = engine.LocalScorer{}
	source := "local"
	if cfg.AIEnabled() {
		gen, err := ai.NewGemini(cmd.Context(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return err
		}
		scorer = engine.NewFallbackScorer(ai.NewScorer(gen, utils.Logger), cfg.ScoreTimeout(), utils.Logger)
		source = gen.Model()
	}
	rxp, err := scorer.Score(cmd.Context(), req)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d RXP (%s)\n", rxp, source)
	return nil
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return err
	}
	tok, err := utils.GenerateToken(cfg.JWTSecret, tokenPlayer, tokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), tok)
	return nil
}
