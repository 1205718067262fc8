package cmd

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lesezeit/lesezeit/internal/database"
	"github.com/lesezeit/lesezeit/internal/upload"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show content statistics",
	Long:  `Display row counts of all content and the disk usage of uploaded audio.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		db, err := database.New(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close() //nolint: errcheck

		stats, err := db.GetStats(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get database stats: %w", err)
		}

		fmt.Println("Database Statistics:")
		fmt.Printf("Users: %d\n", stats.Users)
		fmt.Printf("Stories: %d\n", stats.Stories)
		fmt.Printf("Questions: %d (%d with audio)\n", stats.Questions, stats.QuestionsAudio)
		fmt.Printf("Vocabulary Entries: %d\n", stats.VocabularyEntries)
		fmt.Printf("Grammar Topics: %d\n", stats.GrammarTopics)
		if stats.NewestStory != nil {
			fmt.Printf("Newest Story: %q (%s)\n", stats.NewestStory.Title, stats.NewestStory.CreatedAt.Format(time.RFC3339))
		}

		store, err := upload.New(cfg.Uploads.Dir, cfg.Uploads.MaxSize)
		if err != nil {
			return err
		}
		files, err := store.List()
		if err != nil {
			return err
		}
		total := lo.SumBy(files, func(f upload.File) int64 { return f.Size })
		fmt.Printf("\nUploaded Audio: %d files, %s\n", len(files), humanize.IBytes(uint64(max(total, 0))))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
