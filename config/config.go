// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml"
)

type StartType int

const (
	// Tells the compositor to start a repl in parallel for interacting with it
	START_REPL = StartType(iota)
	// Tells the compositor to execute a specific command on startup
	START_SINGLE_COMMAND
	// Tells the compositor to start without any specific targets
	// Note: Good luck interacting with it :3
	START_NONE
)

// Default cap on CaptureArea entries per Manager, see screencopy.ManagerGlobal
const DefaultScreencopyMaxAreas = 100

type Config struct {
	StartType StartType `envconfig:"START_TYPE,omitempty" toml:"start_type,omitempty"`
	// What command to execute on start. Only matters if StartType is set to START_SINGLE_COMMAND
	StartCommand *string `envconfig:"START_COMMAND,omitempty" toml:"start_command,omitempty"`

	// Max number of CaptureArea entries a single screencopy Manager will keep before
	// wiping its area list. Defaults to DefaultScreencopyMaxAreas if unset/zero.
	ScreencopyMaxAreas int `envconfig:"SCREENCOPY_MAX_AREAS,omitempty" toml:"screencopy_max_areas,omitempty"`
	// logrus level name, e.g. "debug", "info", "warn"
	LogLevel string `envconfig:"LOG_LEVEL,omitempty" toml:"log_level,omitempty"`
	// Name of the wayland socket to advertise. Empty means let wlroots pick one.
	SocketName string `envconfig:"SOCKET_NAME,omitempty" toml:"socket_name,omitempty"`
}

// Default returns a Config with every field at its documented default.
func Default() Config {
	return Config{
		StartType:          START_REPL,
		ScreencopyMaxAreas: DefaultScreencopyMaxAreas,
		LogLevel:           "info",
	}
}

// Load resolves a config file path (explicit path, then XDG_CONFIG_HOME/wlr-screencopy/config.toml,
// then ./config.toml) and layers environment overrides on top of whatever is found there.
// When no explicit path is given and no file is found, Load falls back to Default() plus
// env overrides; an explicit path that cannot be read is returned as an error.
func Load(explicitPath string) (Config, error) {
	conf := Default()

	path := explicitPath
	if path == "" {
		if found, err := xdg.SearchConfigFile(filepath.Join("wlr-screencopy", "config.toml")); err == nil {
			path = found
		} else if _, statErr := os.Stat("config.toml"); statErr == nil {
			path = "config.toml"
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return conf, err
		}
		if err := toml.Unmarshal(data, &conf); err != nil {
			return conf, err
		}
	}

	if err := envconfig.Process("", &conf); err != nil {
		return conf, err
	}

	if conf.ScreencopyMaxAreas <= 0 {
		conf.ScreencopyMaxAreas = DefaultScreencopyMaxAreas
	}

	return conf, nil
}
