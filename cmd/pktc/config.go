package main

import (
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/vuuvv/errors"
)

type config struct {
	SpecDir    string
	SkipSchema bool
	Output     string
	LogLevel   string
}

type fileConfig struct {
	SpecDir    string `toml:"spec_dir"`
	SkipSchema bool   `toml:"skip_schema"`
	Output     string `toml:"output"`
	LogLevel   string `toml:"log_level"`
}

func defaultConfig() config {
	return config{
		SpecDir:  ".",
		Output:   "-",
		LogLevel: "info",
	}
}

// loadConfig 未在文件中出现的键保持默认值
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config{}, errors.Wrapf(err, "load pktc config: %s", err.Error())
	}

	if meta.IsDefined("spec_dir") {
		if dir := strings.TrimSpace(raw.SpecDir); dir != "" {
			cfg.SpecDir = dir
		}
	}
	if meta.IsDefined("skip_schema") {
		cfg.SkipSchema = raw.SkipSchema
	}
	if meta.IsDefined("output") {
		if out := strings.TrimSpace(raw.Output); out != "" {
			cfg.Output = out
		}
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(raw.LogLevel))
	}
	return cfg, nil
}
