package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandevgo/pitchside/internal/config"
	"github.com/sandevgo/pitchside/internal/core"
	"github.com/sandevgo/pitchside/internal/storage/sqlite"
	"github.com/sandevgo/pitchside/pkg/log"
)

var seedCmd = &cobra.Command{
	Use:   "seed <documents.json>",
	Short: "Load knowledge documents into the corpus",
	Long:  `Reads a JSON array of knowledge documents and inserts them into the local corpus, indexing them for retrieval.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()
		logger := log.FromCtx(ctx)

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read documents file: %w", err)
		}

		var docs []core.KnowledgeDocument
		if err := json.Unmarshal(data, &docs); err != nil {
			return fmt.Errorf("parse documents file: %w", err)
		}

		appCfg := config.NewAppConfig(ctx)
		db, err := openDB(ctx, appCfg)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		corpus := sqlite.NewCorpusRepo(db)
		for _, doc := range docs {
			id, err := corpus.Insert(ctx, doc)
			if err != nil {
				return fmt.Errorf("insert %q: %w", doc.Title, err)
			}
			logger.Debug().Int64("id", id).Str("title", doc.Title).Msg("document inserted")
		}

		logger.Info().Int("count", len(docs)).Msg("corpus seeded")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
