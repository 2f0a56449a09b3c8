// Command gtoken resolves page tokens and manages saved stacks.
//
// Usage:
//
//	gtoken <command> [flags]
//
// Commands:
//
//	resolve    Resolve a page token into a gallery token
//	snapshots  List, show or delete saved stacks
//	stub       Serve a fake gallery API for offline runs
//	version    Print version information
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Mr-Dark-debug/gtoken/internal/apistub"
	"github.com/Mr-Dark-debug/gtoken/internal/config"
	"github.com/Mr-Dark-debug/gtoken/internal/database"
	"github.com/Mr-Dark-debug/gtoken/internal/ehclient"
	"github.com/Mr-Dark-debug/gtoken/internal/i18n"
	"github.com/Mr-Dark-debug/gtoken/internal/logging"
	"github.com/Mr-Dark-debug/gtoken/internal/tui"
	"github.com/Mr-Dark-debug/gtoken/pkg/timeutil"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "resolve":
		cmdResolve()
	case "snapshots":
		cmdSnapshots()
	case "stub":
		cmdStub()
	case "version":
		fmt.Printf("gtoken v%s (commit: %s, built: %s)\n", config.Version, config.GitCommit, config.BuildTime)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`gtoken: open galleries from page tokens

Usage:
  gtoken <command> [flags]

Commands:
  resolve    Resolve a page token into a gallery token
  snapshots  List, show or delete saved stacks
  stub       Serve a fake gallery API for offline runs
  version    Print version information

Run 'gtoken <command> --help' for details on each command.`)
}

func loadConfig(path string) config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

type resolveOutput struct {
	Gid     int64  `json:"gid"`
	Token   string `json:"token"`
	Page    int    `json:"page"`
	URL     string `json:"url"`
	Elapsed string `json:"elapsed"`
}

// cmdResolve runs one gtoken request outside the TUI.
func cmdResolve() {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to a TOML config file")
	gid := fs.Int64("gid", -1, "Gallery id (required)")
	ptoken := fs.String("ptoken", "", "Page token (required)")
	page := fs.Int("page", 0, "Zero-based page index")
	outputFormat := fs.String("format", "text", "Output format: text, json")
	fs.Parse(os.Args[2:])

	if *gid < 0 || *ptoken == "" || *page < 0 {
		fmt.Fprintln(os.Stderr, "Error: --gid, --ptoken and a non-negative --page are required")
		fs.Usage()
		os.Exit(1)
	}

	cfg := loadConfig(*configPath)
	logger, err := logging.Open(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer logger.Close()

	tr, err := i18n.New(cfg.UI.Locale)
	if err != nil {
		log.Fatalf("Failed to load translations: %v", err)
	}

	api := ehclient.New(cfg.API.URL,
		ehclient.WithUserAgent(cfg.API.UserAgent),
		ehclient.WithLogger(logger.Logger),
	)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.API.Timeout)
	defer cancel()

	start := time.Now()
	token, err := api.GalleryToken(ctx, *gid, *ptoken, *page)
	elapsed := timeutil.FormatDuration(time.Since(start).Milliseconds())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s (%s)\n", tr.ErrorString(err), elapsed)
		os.Exit(1)
	}

	out := resolveOutput{
		Gid:     *gid,
		Token:   token,
		Page:    *page,
		URL:     fmt.Sprintf(tui.GalleryURLFormat, *gid, token),
		Elapsed: elapsed,
	}

	switch *outputFormat {
	case "json":
		b, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(b))
	case "text":
		fmt.Printf("%s\n  token:   %s\n  elapsed: %s\n", out.URL, out.Token, out.Elapsed)
	default:
		fmt.Fprintf(os.Stderr, "Unknown format: %s\n", *outputFormat)
		os.Exit(1)
	}
}

// cmdSnapshots inspects the stacks saved by gtoken-tui.
func cmdSnapshots() {
	fs := flag.NewFlagSet("snapshots", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to a TOML config file")
	limit := fs.Int("limit", 20, "Maximum results")
	show := fs.Int64("show", 0, "Print the scenes of one saved stack")
	del := fs.Int64("delete", 0, "Delete one saved stack")
	fs.Parse(os.Args[2:])

	cfg := loadConfig(*configPath)
	store, err := database.NewDBService(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	switch {
	case *del != 0:
		if err := store.DeleteStage(*del); err != nil {
			log.Fatalf("Delete failed: %v", err)
		}
		fmt.Printf("Deleted stack %d.\n", *del)

	case *show != 0:
		snap, err := store.GetStage(*show)
		if errors.Is(err, database.ErrNoSnapshot) {
			log.Fatalf("No saved stack %d", *show)
		}
		if err != nil {
			log.Fatalf("Query failed: %v", err)
		}
		b, _ := json.MarshalIndent(snap, "", "  ")
		fmt.Println(string(b))

	default:
		stages, err := store.ListStages(*limit)
		if err != nil {
			log.Fatalf("Query failed: %v", err)
		}
		if len(stages) == 0 {
			fmt.Println("No saved stacks.")
			return
		}
		now := time.Now()
		fmt.Printf("%-6s  %-19s  %-10s  %s\n", "ID", "SAVED", "AGE", "SCENES")
		for _, st := range stages {
			fmt.Printf("%-6d  %-19s  %-10s  %d\n",
				st.StageID,
				timeutil.FormatTimestamp(st.SavedAt),
				timeutil.RelativeTime(st.SavedAt, now),
				st.SceneCount)
		}
	}
}

// seedList collects repeated --seed flags.
type seedList []string

func (s *seedList) String() string     { return strings.Join(*s, ",") }
func (s *seedList) Set(v string) error { *s = append(*s, v); return nil }

// cmdStub serves the fake gallery API until interrupted.
func cmdStub() {
	fs := flag.NewFlagSet("stub", flag.ExitOnError)
	addr := fs.String("listen", "127.0.0.1:8765", "HTTP listen address")
	failWith := fs.Int("fail", 0, "Answer every request with this HTTP status")
	var seeds seedList
	fs.Var(&seeds, "seed", "Token to serve, as gid/ptoken/page=token (page one-based, repeatable)")
	fs.Parse(os.Args[2:])

	logger := logging.New(os.Stderr, logging.ParseLevel("info"))

	stub := apistub.New()
	for _, raw := range seeds {
		p, token, err := apistub.ParseEntry(raw)
		if err != nil {
			log.Fatalf("Bad --seed: %v", err)
		}
		stub.Add(p, token)
	}
	stub.FailWith(*failWith)

	srv := &http.Server{
		Addr:              *addr,
		Handler:           stub.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Stub server failed: %v", err)
		}
	}()

	fmt.Println()
	fmt.Println("  GTOKEN API STUB")
	fmt.Println()
	fmt.Printf("  Listen:  http://%s%s\n", *addr, apistub.Path)
	fmt.Printf("  Seeds:   %d\n", len(seeds))
	fmt.Println()
	fmt.Printf("  Point gtoken at it with: GTOKEN_API_URL=http://%s%s\n", *addr, apistub.Path)
	fmt.Println("  Press Ctrl+C to stop.")
	fmt.Println()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("stub shutdown", "error", err)
	}
	logger.Info("stub stopped", "calls", stub.Calls())
}
