package main

import (
	"fmt"

	"github.com/zulandar/mandi/internal/config"
	"github.com/zulandar/mandi/internal/db"
	"gorm.io/gorm"
)

const defaultConfigPath = config.DefaultPath

// connectFromConfig loads the config file and opens the database it names.
func connectFromConfig(configPath string) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to %s: %w", cfg.Database.Name, err)
	}
	return cfg, gormDB, nil
}
