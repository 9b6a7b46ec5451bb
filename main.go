package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/bayhackplis1/Tiktok-Downloader-V4/internal"
	"github.com/bayhackplis1/Tiktok-Downloader-V4/pkg/logger"
)

var log = logger.Get("Main")

// main is the entry point to the program. It loads the user config
// (optionally from a YAML file, always overridable via environment
// variables), constructs the downloader and runs it until the process
// receives an interrupt/termination signal.
func main() {
	configPath := flag.String("config", "", "path to a YAML configuration file (optional)")
	verbose := flag.Bool("verbose", false, "enable verbose logging output")
	flag.Parse()

	if *verbose {
		logger.SetMinLoggingLevel(logger.VERBOSE.Level())
	}

	config := internal.DownloaderConfig{}
	var err error
	if *configPath != "" {
		err = config.LoadFromFile(*configPath)
	} else {
		err = config.LoadFromEnvironment()
	}
	if err != nil {
		log.Emit(logger.FATAL, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	downloader, err := internal.New(config)
	if err != nil {
		log.Emit(logger.FATAL, "Failed to initialise downloader: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := downloader.Run(ctx); err != nil {
		log.Emit(logger.FATAL, "Downloader stopped with error: %v\n", err)
		os.Exit(1)
	}

	log.Emit(logger.STOP, "Downloader stopped\n")
}
