package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/lesezeit/lesezeit/internal/database"
	"github.com/lesezeit/lesezeit/internal/upload"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var pruneCmdFlags struct {
	DryRun bool
}

var pruneCmd = &cobra.Command{
	Use:   "prune-uploads",
	Short: "Delete uploaded audio that no question references",
	Long:  `Uploads written by a request that crashed before it could clean up are left behind on disk. This command removes every file in the upload directory that no question references.`,
	Run:   pruneUploads,
}

func init() {
	pruneCmd.Flags().BoolVar(&pruneCmdFlags.DryRun, "dry-run", false, "Only list the files that would be deleted")

	rootCmd.AddCommand(pruneCmd)
}

func pruneUploads(cmd *cobra.Command, _ []string) {
	cfg := loadConfig()

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	defer db.Close() //nolint:errcheck

	store, err := upload.New(cfg.Uploads.Dir, cfg.Uploads.MaxSize)
	if err != nil {
		log.Fatalf("failed to open upload directory: %v", err)
	}

	referenced, err := db.GetAudioPaths(cmd.Context())
	if err != nil {
		log.Fatalf("failed to load audio paths: %v", err)
	}

	orphans, err := store.Prune(referenced, pruneCmdFlags.DryRun)
	if err != nil {
		log.Fatalf("failed to prune uploads: %v", err)
	}

	size := lo.SumBy(orphans, func(f upload.File) int64 { return f.Size })
	if pruneCmdFlags.DryRun {
		for _, f := range orphans {
			log.Info("Would remove", "path", f.Path, "size", humanize.IBytes(uint64(f.Size)))
		}
		log.Info("Dry run finished", "files", len(orphans), "size", humanize.IBytes(uint64(size)))
		return
	}
	log.Info("Pruned orphaned uploads", "files", len(orphans), "size", humanize.IBytes(uint64(size)))
}
