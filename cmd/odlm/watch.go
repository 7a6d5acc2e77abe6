package main

import (
	"log"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var watchedExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true, ".tif": true, ".tiff": true,
}

func newWatchCmd() *cobra.Command {
	var (
		configPath string
		watchDir   string
		outDir     string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Segment every image file dropped into a directory",
		Long: `watch processes each complete image file as it's created in a
directory — discrete batch segmentation of files that happen to arrive
over time, not a real-time video frame stream.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchDirectory(configPath, watchDir, outDir)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "odlm.ini", "path to an INI config file")
	cmd.Flags().StringVar(&watchDir, "dir", "", "directory to watch for new image files (required)")
	cmd.Flags().StringVar(&outDir, "out", ".", "output directory for snapshots and run summaries")
	cmd.MarkFlagRequired("dir")

	return cmd
}

func watchDirectory(configPath, watchDir, outDir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(watchDir); err != nil {
		return err
	}

	log.Printf("odlm watch: watching %s for new images", watchDir)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create == 0 {
				continue
			}
			if !watchedExtensions[strings.ToLower(filepath.Ext(event.Name))] {
				continue
			}
			log.Printf("odlm watch: new image %s", event.Name)
			if err := runPipeline(configPath, event.Name, "", outDir); err != nil {
				log.Printf("odlm watch: %s: %v", event.Name, err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("odlm watch: watcher error: %v", err)
		}
	}
}
