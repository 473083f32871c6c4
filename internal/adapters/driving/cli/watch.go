package cli

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	fsstore "github.com/custodia-labs/ragbench-cli/internal/adapters/driven/storage/fs"
	"github.com/custodia-labs/ragbench-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ragbench-cli/internal/core/services"
	"github.com/custodia-labs/ragbench-cli/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch [corpus-dir]",
	Short: "Watch a corpus directory and re-annotate changed documents",
	Long: `Watches the corpus directory tree and re-annotates documents as they
are created or modified, keeping the profile store current without
re-running the full batch. Stop with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

var watchOut string

// debounce window for write events. Editors and copies emit bursts of
// writes for a single save; only the last one should trigger a parse.
const watchSettle = 500 * time.Millisecond

func init() {
	watchCmd.Flags().StringVarP(&watchOut, "out", "o", "", "Profile output directory (default ~/.ragbench/profiles)")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	corpusDir := args[0]

	info, err := os.Stat(corpusDir)
	if err != nil {
		return fmt.Errorf("stat corpus dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", corpusDir)
	}

	configStore, err := openConfig()
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	settings := loadSettings(configStore)

	store, err := fsstore.NewProfileStore(watchOut)
	if err != nil {
		return fmt.Errorf("open profile store: %w", err)
	}
	defer store.Close()

	index, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("open profile index: %w", err)
	}
	defer index.Close()

	opts, err := buildAnnotateOptions(settings, index.ProfileIndex())
	if err != nil {
		return err
	}

	service := services.NewAnnotateService(newParserRegistry(), store, opts...)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watchTree(watcher, corpusDir); err != nil {
		return fmt.Errorf("watch corpus dir: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s (profiles in %s). Press Ctrl-C to stop.\n", corpusDir, store.Root())

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(watchSettle)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			cmd.Println("Stopping.")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if fi, serr := os.Stat(event.Name); serr == nil && fi.IsDir() {
					if werr := watchTree(watcher, event.Name); werr != nil {
						logger.Warn("watch new dir %s: %v", event.Name, werr)
					}
					continue
				}
			}
			if !services.SupportedFile(event.Name) {
				continue
			}
			pending[event.Name] = time.Now()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)

		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < watchSettle {
					continue
				}
				delete(pending, path)
				annotateChanged(ctx, cmd, service, store, corpusDir, path)
			}
		}
	}
}

// annotateChanged re-annotates one document and persists the profile.
// Failures are logged and recorded, never fatal to the watch loop.
func annotateChanged(ctx context.Context, cmd *cobra.Command, service *services.AnnotateService, store *fsstore.ProfileStore, corpusDir, path string) {
	profile, err := service.AnnotateFile(ctx, path)
	if err != nil {
		logger.Warn("annotate %s: %v", path, err)
		return
	}

	rel, err := filepath.Rel(corpusDir, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	if err := store.Save(ctx, profile, rel); err != nil {
		logger.Warn("save profile for %s: %v", path, err)
		return
	}
	cmd.Printf("Re-annotated %s (%s, %s)\n", rel, profile.FileType, profile.Layout)
}

// watchTree adds the directory and every subdirectory to the watcher.
func watchTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
