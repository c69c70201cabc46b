package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/glebovdev/localfm-cli/internal/cache"
	"github.com/glebovdev/localfm-cli/internal/config"
	"github.com/glebovdev/localfm-cli/internal/library"
	"github.com/glebovdev/localfm-cli/internal/playback"
	"github.com/glebovdev/localfm-cli/internal/term"
	"github.com/glebovdev/localfm-cli/internal/ui"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	versionFlag = flag.Bool("version", false, "Show version information")
	debugFlag   = flag.Bool("debug", false, "Enable debug logging")
	noCacheFlag = flag.Bool("no-cache", false, "Skip the library scan cache")
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s v%s - %s\n\n", config.AppName, config.AppVersion, config.AppDescription)
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <music-dir>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys: p pause/resume, q or Esc quit. Ctrl+C also toggles pause.\n")

		configPath, err := config.GetConfigPath()
		if err == nil {
			if _, statErr := os.Stat(configPath); statErr == nil {
				fmt.Fprintf(os.Stderr, "\nConfig file: %s\n", configPath)
			} else {
				fmt.Fprintf(os.Stderr, "\nConfig file will be created on first use.\n")
			}
		}
	}
}

func setupLogging() {
	if *debugFlag {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)

		cacheDir, err := cache.GetCacheDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not get cache dir: %v\n", err)
			cacheDir = os.TempDir()
		}
		if err := os.MkdirAll(cacheDir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create log dir: %v\n", err)
		}
		logPath := filepath.Join(cacheDir, "debug.log")
		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create log file: %v\n", err)
			logFile = os.Stderr
		}
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: logFile, TimeFormat: "15:04:05"})
		fmt.Printf("Debug log: %s\n", logPath)
		log.Info().Msgf("Starting %s v%s (debug mode)", config.AppName, config.AppVersion)
	} else {
		// Avoid corrupting the playback screen by only logging errors to /dev/null
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
		logFile, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0644)
		if err == nil {
			log.Logger = log.Output(logFile)
		}
	}
}

func loadTracks(root string, cfg *config.Config) ([]library.Track, error) {
	var scanCache *cache.Cache
	if !*noCacheFlag {
		var err error
		scanCache, err = cache.NewCache()
		if err != nil {
			log.Warn().Err(err).Msg("Scan cache unavailable")
		} else {
			go func() {
				if err := scanCache.CleanExpired(); err != nil {
					log.Debug().Err(err).Msg("Failed to clean expired cache")
				}
			}()
			if tracks := scanCache.GetTracks(root, cfg.Extensions); tracks != nil {
				return tracks, nil
			}
		}
	}

	tracks, err := library.Scan(root, cfg.Extensions)
	if err != nil {
		return nil, err
	}

	if scanCache != nil && len(tracks) > 0 {
		if err := scanCache.SaveTracks(root, cfg.Extensions, tracks); err != nil {
			log.Debug().Err(err).Msg("Failed to cache scan result")
		}
	}

	return tracks, nil
}

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Printf("%s v%s\n", config.AppName, config.AppVersion)
		fmt.Println(config.AppDescription)
		fmt.Println(config.AppProjectShort)
		os.Exit(0)
	}

	setupLogging()

	root := flag.Arg(0)
	if root == "" {
		flag.Usage()
		return
	}

	if _, err := os.Stat(root); err != nil {
		fmt.Fprintln(os.Stderr, "The provided path does not exist.")
		return
	}

	if err := config.EnsureConfigFile(); err != nil {
		log.Warn().Err(err).Msg("Could not create default config file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Warn().Err(err).Msg("Using default configuration")
	}

	tracks, err := loadTracks(root, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to scan %s: %v\n", root, err)
		return
	}
	if len(tracks) == 0 {
		fmt.Println("No music files found in the provided path.")
		return
	}

	selected, err := library.PromptSelect(os.Stdin, os.Stdout, tracks)
	if err != nil {
		if errors.Is(err, library.ErrInvalidSelection) {
			fmt.Fprintln(os.Stderr, "Invalid selection.")
			return
		}
		fmt.Fprintf(os.Stderr, "Failed to read selection: %v\n", err)
		return
	}

	track := tracks[selected]
	fmt.Printf("Playing %s\n", track.DisplayName())
	log.Info().Str("path", track.Path).Msg("Track selected")

	state := playback.NewState()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// SIGINT toggles pause like the pause key; SIGTERM requests a clean quit.
	// Registered before the stream worker starts.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go playback.Bridge(sigChan, state, cancel)

	workerErr := make(chan error, 1)
	worker := playback.NewWorker(cfg.TickInterval())
	go func() {
		workerErr <- worker.Run(ctx, track, state)
	}()

	session, err := term.New()
	if err != nil {
		cancel()
		fmt.Fprintf(os.Stderr, "Failed to set up terminal: %v\n", err)
		os.Exit(1)
	}
	defer session.Close()

	loop := ui.NewControlLoop(session, state, track, cfg, cancel)
	loop.Run(ctx)

	// Restore the terminal before reporting anything; Close is idempotent
	session.Close()
	signal.Stop(sigChan)
	close(sigChan) // releases the bridge goroutine

	if err := <-workerErr; err != nil {
		log.Error().Err(err).Msg("Playback failed")
		fmt.Fprintf(os.Stderr, "Playback failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Exiting...")
}
