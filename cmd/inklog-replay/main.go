// Command inklog-replay renders a persisted annotation session back into
// an image. It loads the session's record log from the data directory,
// replays it onto a fresh slide surface and writes the result as PNG,
// optionally alongside a vector PDF re-trace.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/INLOpen/inklog/canvas"
	"github.com/INLOpen/inklog/compressors"
	"github.com/INLOpen/inklog/config"
	"github.com/INLOpen/inklog/export"
	"github.com/INLOpen/inklog/replay"
	"github.com/INLOpen/inklog/store"
)

func main() {
	configPath := flag.String("config", "inklog.yaml", "Path to the YAML configuration file")
	slideID := flag.Int64("slide", 0, "Slide ID of the session to replay")
	userID := flag.Int64("user", 0, "User ID of the session to replay")
	outPath := flag.String("out", "session.png", "Output PNG path for the replayed slide surface")
	pdfPath := flag.String("pdf", "", "Optional output PDF path for a vector re-trace")
	flag.Parse()

	if err := run(*configPath, *slideID, *userID, *outPath, *pdfPath); err != nil {
		fmt.Fprintf(os.Stderr, "inklog-replay: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, slideID, userID int64, outPath, pdfPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, closer, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	if closer != nil {
		defer closer.Close()
	}

	compression, err := compressors.ParseType(cfg.Store.Compression)
	if err != nil {
		return fmt.Errorf("invalid store compression: %w", err)
	}
	fs, err := store.Open(store.Options{
		Dir:         cfg.Store.DataDir,
		Compression: compression,
		SyncMode:    store.SyncMode(cfg.Store.SyncMode),
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("failed to open record store: %w", err)
	}
	defer fs.Close()

	key := store.SessionKey{SlideID: slideID, UserID: userID}
	records, err := fs.LoadAll(context.Background(), key)
	if err != nil {
		return fmt.Errorf("failed to load session %s: %w", key, err)
	}
	logger.Info("session loaded", "session", key.String(), "records", len(records))

	slide, err := canvas.NewSurface(cfg.Engine.Slide.Dims(), logger)
	if err != nil {
		return fmt.Errorf("failed to create slide surface: %w", err)
	}
	webcam, err := canvas.NewSurface(cfg.Engine.Webcam.Dims(), logger)
	if err != nil {
		return fmt.Errorf("failed to create webcam surface: %w", err)
	}

	replay.New(slide, webcam, replay.Options{Logger: logger}).Replay(records)

	if err := export.PNG(slide.Image(), outPath); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	logger.Info("replayed slide written", "path", outPath)

	if pdfPath != "" {
		if err := export.PDF(records, cfg.Engine.Slide.Dims(), pdfPath); err != nil {
			return fmt.Errorf("failed to write %s: %w", pdfPath, err)
		}
		logger.Info("vector re-trace written", "path", pdfPath)
	}
	return nil
}
