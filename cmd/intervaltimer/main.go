package main

import (
	"errors"
	"log"
	"os"
	"path/filepath"

	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"

	"intervaltimer/internal/library"
	"intervaltimer/internal/logging"
	"intervaltimer/internal/platform"
	"intervaltimer/internal/share"
	"intervaltimer/internal/storage"
	"intervaltimer/resources"
)

const (
	appName = "IntervalTimer"
	appID   = "io.github.intervaltimer"
	logFile = "intervaltimer.log"
)

func main() {
	links := shareLinks(os.Args[1:])

	guard, err := platform.AcquireSingleInstance(appName)
	if err != nil {
		if errors.Is(err, platform.ErrAlreadyRunning) && len(links) > 0 {
			if forwardErr := platform.Forward(appName, links...); forwardErr != nil {
				log.Printf("forward share link: %v", forwardErr)
			}
			return
		}
		log.Printf("single instance: %v", err)
		return
	}
	defer func() {
		_ = guard.Release()
	}()

	service := platform.NewService()
	configDir, err := service.ConfigDir(appName)
	if err != nil {
		log.Printf("config dir: %v", err)
		return
	}

	settings, err := storage.LoadSettings(configDir)
	if err != nil {
		log.Printf("load settings: %v", err)
	}

	level, err := logging.ParseLevel(settings.LogLevel)
	if err != nil {
		log.Printf("log level: %v", err)
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		log.Printf("create config dir: %v", err)
		return
	}
	logger, err := logging.New(level, os.Stderr, filepath.Join(configDir, logFile))
	if err != nil {
		log.Printf("open log: %v", err)
		logger = logging.Stderr(level)
	}
	defer logger.Close()

	store, err := storage.Open(settings.StoreBackend, configDir)
	if err != nil {
		logger.Errorf("open preset store: %v", err)
		return
	}
	defer store.Close()

	fyneApp := app.NewWithID(appID)
	fyneApp.SetIcon(resources.MustIcon(resources.AppIcon))
	desktopApp, ok := fyneApp.(desktop.App)
	if !ok {
		logger.Errorf("system tray unsupported on this platform")
		return
	}

	timer := newApplication(fyneApp, desktopApp, service, library.New(store, logger), logger, configDir, settings)
	defer timer.close()

	if settings.RegisterLinks {
		timer.registerLinks(true)
	}

	go guard.Serve(timer.handleLink)
	for _, link := range links {
		timer.handleLink(link)
	}

	fyneApp.Run()
}

// shareLinks picks share links out of the command line; the OS passes the
// clicked link as an argument.
func shareLinks(args []string) []string {
	var links []string
	for _, arg := range args {
		if share.Handles(arg) {
			links = append(links, arg)
		}
	}
	return links
}
