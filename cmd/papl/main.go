// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/papl"
	"github.com/poiesic/papl/ai"
	"github.com/poiesic/papl/corpus"
	"github.com/poiesic/papl/search"
	"github.com/poiesic/papl/storage/badger"
	"github.com/urfave/cli/v2"
)

func main() {
	dataFlags := []cli.Flag{
		&cli.StringFlag{
			Name:     "pricing",
			Usage:    "Path to PAPL pricing data (JSON)",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "rules",
			Usage:    "Path to PAPL claiming rules (YAML)",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "guidance",
			Usage:    "Path to PAPL guidance text (Markdown)",
			Required: true,
		},
	}

	aiFlags := []cli.Flag{
		&cli.StringFlag{
			Name:  "ai-host",
			Usage: "OpenAI-compatible service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.StringFlag{
			Name:  "llm-model",
			Usage: "Answer generation model name",
			Value: "qwen2.5:3b",
		},
	}

	app := &cli.App{
		Name:   "papl",
		Usage:  "Search and question answering over NDIS PAPL pricing documents",
		Before: setupLogger,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Keyword search over pricing, claiming rules, and guidance",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  "max-results",
						Usage: "Maximum number of results",
						Value: 10,
					},
				}, dataFlags...),
			},
			{
				Name:      "ask",
				Usage:     "Ask a question answered from the PAPL documents",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags: append(append([]cli.Flag{
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of documents to retrieve",
						Value: 5,
					},
					&cli.IntFlag{
						Name:  "max-tokens",
						Usage: "Maximum response length in tokens",
						Value: 2000,
					},
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to BadgerDB directory for conversation history",
					},
					&cli.BoolFlag{
						Name:  "show-sources",
						Usage: "Print the document chunks used as context",
					},
				}, dataFlags...), aiFlags...),
			},
			{
				Name:   "history",
				Usage:  "Show recorded question-and-answer turns",
				Action: historyCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB directory for conversation history",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of turns to show",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "clear",
						Usage: "Remove all recorded turns instead of listing them",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query is required")
	}

	corp, err := buildCorpus(c)
	if err != nil {
		return err
	}

	engine, err := search.NewEngine(corp)
	if err != nil {
		return err
	}

	results := engine.Search(query, c.Int("max-results"))

	if len(results) == 0 {
		fmt.Println("No results found.")
	}
	for i, result := range results {
		fmt.Printf("%d. [%s] %s (score %.1f)\n", i+1, result.SourceType, result.Title, result.Score)
		fmt.Println(indent(result.Content, "   "))
	}

	for _, suggestion := range engine.SuggestRefinements(query, results) {
		fmt.Printf("Hint: %s\n", suggestion)
	}

	return nil
}

func askCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("question is required")
	}

	corp, err := buildCorpus(c)
	if err != nil {
		return err
	}

	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("ai-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithLLMModel(c.String("llm-model")),
	)

	opts := []papl.ServiceOption{
		papl.WithAIConfig(aiConfig),
		papl.WithTopK(c.Int("top-k")),
		papl.WithMaxTokens(c.Int("max-tokens")),
	}
	if dbPath := c.String("db"); dbPath != "" {
		opts = append(opts, papl.WithStoragePath(dbPath))
	}

	service, err := papl.NewService(corp, opts...)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	defer service.Close()

	fmt.Fprintf(os.Stderr, "Embedding %d document chunks...\n", corp.Len())
	answer, err := service.Ask(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to answer question: %w", err)
	}

	fmt.Println(answer.Answer)

	if c.Bool("show-sources") && len(answer.Documents) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for i, doc := range answer.Documents {
			fmt.Printf("  %d. [%s] %s\n", i+1, doc.SourceType, doc.ChunkID)
			fmt.Println(indent(doc.Content, "     "))
		}
	}

	return nil
}

func historyCommand(c *cli.Context) error {
	ctx := context.Background()

	repo, backend, err := badger.NewRepository(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer backend.Close()
	defer repo.Close()

	if c.Bool("clear") {
		if err := repo.Reset(ctx); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		fmt.Println("History cleared.")
		return nil
	}

	turns, err := repo.GetRecentTurns(ctx, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if len(turns) == 0 {
		fmt.Println("No recorded turns.")
		return nil
	}

	for _, turn := range turns {
		fmt.Printf("[%s] Q: %s\n", turn.CreatedAt.Format("2006-01-02 15:04"), turn.Query)
		fmt.Printf("A: %s\n", turn.Answer)
		if len(turn.Sources) > 0 {
			fmt.Printf("Sources: %s\n", strings.Join(turn.Sources, ", "))
		}
		fmt.Println()
	}

	return nil
}

func buildCorpus(c *cli.Context) (*corpus.Corpus, error) {
	items, err := corpus.LoadPricing(c.String("pricing"))
	if err != nil {
		return nil, fmt.Errorf("failed to load pricing data: %w", err)
	}

	rules, err := corpus.LoadRules(c.String("rules"))
	if err != nil {
		return nil, fmt.Errorf("failed to load claiming rules: %w", err)
	}

	guidance, err := corpus.LoadGuidance(c.String("guidance"))
	if err != nil {
		return nil, fmt.Errorf("failed to load guidance: %w", err)
	}

	builder := corpus.NewBuilder()
	return builder.Build(items, rules, guidance), nil
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
