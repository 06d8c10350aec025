package main

import (
	"github.com/hairizuanbinnoorazman/project-viewer-sync/dispatcher"
	"github.com/hairizuanbinnoorazman/project-viewer-sync/document/gist"
	"github.com/hairizuanbinnoorazman/project-viewer-sync/logger"
	"github.com/hairizuanbinnoorazman/project-viewer-sync/syncer"
)

func newLogger(cfg *Config) logger.Logger {
	return logger.NewLogrusLoggerWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
}

func newDispatcher(cfg *Config, log logger.Logger) *dispatcher.Dispatcher {
	state := syncer.NewState(cfg.Remote.BaseURL, cfg.Remote.Description)
	return dispatcher.New(state, gist.Factory{Timeout: cfg.Remote.Timeout}, log)
}
