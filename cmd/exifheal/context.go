package main

import (
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"exifheal/internal/config"
	"exifheal/internal/ledger"
	"exifheal/internal/logging"
	"exifheal/internal/services/exiftool"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.New(logging.Options{
			Level:   cfg.Logging.Level,
			Format:  cfg.Logging.Format,
			LogFile: filepath.Join(cfg.Paths.LogDir, "exifheal.log"),
		})
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) openStore() (*ledger.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return ledger.Open(cfg, logger)
}

func (c *commandContext) newExiftoolClient() (*exiftool.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	client, err := exiftool.New(cfg.ExiftoolBinary(), cfg.ExifTool.ReadTimeout, cfg.ExifTool.WriteTimeout, logger)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
