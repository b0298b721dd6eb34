package config

import (
	"encoding/json"
	"os"
	"sync"
)

type Config struct {
	Port         string `json:"port"`
	DBPath       string `json:"dbPath"`
	ImageDirPath string `json:"imageDirPath"`
}

var (
	cfg Config
	mu  sync.RWMutex
)

const configFilePath = "./hainyu_config.json"

func defaults(c Config) Config {
	if c.Port == "" {
		c.Port = ":8080"
	}
	if c.DBPath == "" {
		c.DBPath = "./hainyu.db"
	}
	if c.ImageDirPath == "" {
		c.ImageDirPath = "./images"
	}
	return c
}

func LoadConfig() (Config, error) {
	mu.Lock()
	defer mu.Unlock()

	file, err := os.ReadFile(configFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg = defaults(Config{})
			return cfg, nil
		}
		return Config{}, err
	}

	var tempCfg Config
	if err := json.Unmarshal(file, &tempCfg); err != nil {
		return Config{}, err
	}
	cfg = defaults(tempCfg)

	return cfg, nil
}

func SaveConfig(newCfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	newCfg = defaults(newCfg)

	file, err := json.MarshalIndent(newCfg, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(configFilePath, file, 0644); err != nil {
		return err
	}
	cfg = newCfg
	return nil
}

func GetConfig() Config {
	mu.RLock()
	defer mu.RUnlock()
	return defaults(cfg)
}
