// Package main is the entry point for the interactive PLY viewer.
package main

import (
	"fmt"
	"os"

	"github.com/gopxl/mainthread/v2"
	"go.uber.org/zap"

	"github.com/Faultbox/plyview/internal/config"
	"github.com/Faultbox/plyview/internal/logger"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if path := config.WriteConfigPath(); path != "" {
		if err := cfg.SaveTo(path); err != nil {
			fmt.Fprintf(os.Stderr, "Writing config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config written to %s\n", path)
		return
	}

	if err := initLogger(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}

	logger.Info("=== PLY Viewer ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	// SDL and GL calls are funneled onto the OS main thread.
	code := 0
	mainthread.Run(func() {
		if err := run(cfg, config.ModelPath()); err != nil {
			logger.Error("viewer error", zap.Error(err))
			code = 1
		}
	})

	logger.Info("viewer closed", zap.Int("exit_code", code))
	logger.Sync()
	os.Exit(code)
}

func initLogger(cfg config.LoggingConfig) error {
	if cfg.LogFile == "" || !cfg.JSON {
		return logger.Init(cfg.Level, cfg.LogFile)
	}
	fileCfg := logger.DefaultFileConfig(cfg.LogFile)
	fileCfg.JSON = true
	return logger.InitWithFileConfig(cfg.Level, fileCfg, true)
}

func run(cfg *config.Config, path string) error {
	if path == "" {
		path = pickFile()
		if path == "" {
			logger.Info("no file selected")
		}
	}

	app, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	if path != "" {
		app.session.Load(path)
	}
	return app.Run()
}
