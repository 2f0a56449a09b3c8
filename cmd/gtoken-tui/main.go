// Command gtoken-tui opens a gallery from a page token.
//
// Usage:
//
//	gtoken-tui --gid 618395 --ptoken 0439fa3666 --page 0
//	gtoken-tui --restore
//
// Flags:
//
//	--config   Path to a TOML config file (default: ~/.config/gtoken/config.toml)
//	--action   Scene action (default: gallery_token)
//	--gid      Gallery id
//	--ptoken   Page token
//	--page     Zero-based page index
//	--restore  Rebuild the last saved stack instead of starting a new one
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Mr-Dark-debug/gtoken/internal/config"
	"github.com/Mr-Dark-debug/gtoken/internal/database"
	"github.com/Mr-Dark-debug/gtoken/internal/ehclient"
	"github.com/Mr-Dark-debug/gtoken/internal/i18n"
	"github.com/Mr-Dark-debug/gtoken/internal/job"
	"github.com/Mr-Dark-debug/gtoken/internal/logging"
	"github.com/Mr-Dark-debug/gtoken/internal/stage"
	"github.com/Mr-Dark-debug/gtoken/internal/tui"
)

func main() {
	configPath := flag.String("config", "", "Path to a TOML config file")
	action := flag.String("action", tui.ActionGalleryToken, "Scene action")
	gid := flag.Int64("gid", -1, "Gallery id")
	ptoken := flag.String("ptoken", "", "Page token")
	page := flag.Int("page", -1, "Zero-based page index")
	restore := flag.Bool("restore", false, "Restore the last saved stack")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.Open(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer logger.Close()

	store, err := database.NewDBService(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database at %s: %v", cfg.Database.Path, err)
	}
	defer store.Close()

	tr, err := i18n.New(cfg.UI.Locale)
	if err != nil {
		log.Fatalf("Failed to load translations: %v", err)
	}

	api := ehclient.New(cfg.API.URL,
		ehclient.WithHTTPClient(&http.Client{}),
		ehclient.WithUserAgent(cfg.API.UserAgent),
		ehclient.WithLogger(logger.Logger),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runner := job.NewRunner(ctx, api, cfg.API.Timeout, logger.Logger)

	st := stage.New(tui.Register(stage.NewRegistry()), stage.Deps{
		Jobs:    runner,
		Tr:      tr,
		Logger:  logger.Logger,
		Animate: cfg.UI.Animate,
	}, store)

	if *restore {
		snap, err := store.LatestStage()
		if errors.Is(err, database.ErrNoSnapshot) {
			log.Fatalf("No saved stack in %s", cfg.Database.Path)
		}
		if err != nil {
			log.Fatalf("Failed to read saved stack: %v", err)
		}
		if err := st.Restore(snap); err != nil {
			log.Fatalf("Failed to restore stack %d: %v", snap.StageID, err)
		}
	} else {
		args := stage.Bundle{tui.KeyAction: *action, tui.KeyGid: *gid, tui.KeyPage: *page}
		if *ptoken != "" {
			args[tui.KeyPToken] = *ptoken
		}
		if err := st.Start(tui.KindProgress, args); err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
	}

	logger.Info("gtoken-tui starting", "version", config.Version, "stage", st.ID(), "restore", *restore)

	p := tea.NewProgram(st, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = p.Run()
	cancel()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
	if id := st.SavedStageID(); id != 0 {
		fmt.Printf("Saved stack %d. Resume with: gtoken-tui --restore\n", id)
	}
	if err := st.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save stack: %v\n", err)
		os.Exit(1)
	}
}
