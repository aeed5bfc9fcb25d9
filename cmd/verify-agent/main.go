// Command verify-agent runs one question through the assistant against a
// live database, printing tool progress and the final answer. Useful as a
// smoke test after seeding.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"medstock-agent/internal/ai"
	"medstock-agent/internal/app"
	"medstock-agent/internal/config"
	"medstock-agent/internal/core"
	"medstock-agent/internal/db"
	"medstock-agent/internal/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("MEDSTOCK_CONFIG"))
	if err != nil {
		fallback := logger.New("prod")
		fallback.Fatal().Err(err).Msg("config load failed")
	}
	log := logger.New(cfg.App.Env)

	if cfg.OpenAI.APIKey == "" {
		log.Fatal().Msg("OpenAI API key not set")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("database connect failed")
	}
	defer pool.Close()

	analytics := core.NewAnalytics(pool, cfg.SafetyFactor())
	assistant := ai.NewAssistant(cfg.OpenAI.APIKey, cfg.OpenAI.Model, app.NewAssistantTools(analytics))

	question := "Which items are critical right now, and what should we order first?"
	if len(os.Args) > 1 {
		question = strings.Join(os.Args[1:], " ")
	}

	fmt.Printf("QUESTION: %s\n\n", question)
	reply, err := assistant.Answer(ctx, question, "", func(note string) {
		fmt.Printf("  [%s]\n", note)
	})
	if err != nil {
		log.Fatal().Err(err).Msg("assistant failed")
	}

	fmt.Printf("\n--- ANSWER ---\n%s\n", reply.Text)
}
