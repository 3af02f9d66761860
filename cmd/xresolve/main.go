package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/iconidentify/xresolve/internal/config"
	"github.com/iconidentify/xresolve/internal/downloader"
	"github.com/iconidentify/xresolve/pkg/twitter"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

type resolveResult struct {
	TweetID     string `json:"tweet_id"`
	VideoURL    string `json:"video_url"`
	Bitrate     int    `json:"bitrate"`
	ContentType string `json:"content_type"`
	SavedTo     string `json:"saved_to,omitempty"`
}

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to config file")
	download := flag.Bool("download", false, "Download the video to the configured directory")
	output := flag.String("o", "", "Download the video to this exact file path")
	downloadDir := flag.String("d", "", "Download the video into this directory with the canonical filename")
	jsonOut := flag.Bool("json", false, "Print the result as JSON")
	verbose := flag.Bool("v", false, "Verbose logging")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("xresolve %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one tweet URL is required")
		fmt.Fprintln(os.Stderr, "Usage: xresolve [flags] https://x.com/user/status/1234567890")
		flag.PrintDefaults()
		os.Exit(1)
	}
	tweetURL := flag.Arg(0)

	// Logs go to stderr so the resolved URL stays alone on stdout
	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Optional .env for local development
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to load .env file", "error", err)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Handle signals for cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nCancelled")
		cancel()
	}()

	// Resolve
	resolver := twitter.NewClient(cfg.Resolver, logger)

	best, err := resolver.ResolveBestVideo(ctx, tweetURL)
	if err != nil {
		if ctx.Err() != nil {
			os.Exit(130) // Cancelled by signal
		}
		logger.Error("resolve failed", "error", err)
		os.Exit(1)
	}

	tweetID, _ := twitter.ExtractTweetID(tweetURL)

	// Download if requested
	savedTo := ""
	if *download || *output != "" || *downloadDir != "" {
		path := *output
		if path == "" {
			dir := *downloadDir
			if dir == "" {
				dir = cfg.Download.Dir
			}
			path = filepath.Join(dir, downloader.Filename(tweetID, best.Bitrate))
		}

		dl := downloader.NewHTTPDownloader(cfg.Download, logger)
		size, err := dl.SaveTo(ctx, best.URL, path)
		if err != nil {
			if ctx.Err() != nil {
				os.Exit(130)
			}
			logger.Error("download failed", "error", err)
			os.Exit(1)
		}
		savedTo = path

		if !*jsonOut {
			fmt.Printf("Saved %s (%.2f MB)\n", path, float64(size)/(1024*1024))
		}
	}

	// Print result
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		result := resolveResult{
			TweetID:     tweetID,
			VideoURL:    best.URL,
			Bitrate:     best.Bitrate,
			ContentType: best.ContentType,
			SavedTo:     savedTo,
		}
		if err := enc.Encode(result); err != nil {
			logger.Error("failed to encode result", "error", err)
			os.Exit(1)
		}
		return
	}

	if savedTo == "" {
		fmt.Println(best.URL)
	}
}
