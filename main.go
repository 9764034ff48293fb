// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	"flag"

	"github.com/sirupsen/logrus"

	"github.com/wl-compositor/wlr-screencopy/config"
)

var (
	tool       *bool   = flag.Bool("tool", false, "Start as a tool instead of a compositor")
	help       *bool   = flag.Bool("help", false, "Show this help message (or the one for tool mode if -tool is set)")
	configPath *string = flag.String("config", "", "Path to the config file. Defaults to the XDG config search path")
)

func main() {
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatalln("loading config")
	}

	switch level, err := logrus.ParseLevel(conf.LogLevel); {
	case err == nil:
		logrus.SetLevel(level)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}

	if *tool {
		utilMain(&conf)
		return
	}

	if *help {
		compositorHelpMessage()
		return
	}

	wlMain(&conf)
}

func compositorHelpMessage() {
	logrus.Infoln("---- Help message for wlr-screencopy in compositor mode ----")
	logrus.Infoln("-config: Path to the config file. Default is the XDG config search path")
	logrus.Infoln("-tool: Start as a tool instead of a compositor")
	logrus.Infoln("-help: Show this help message (or the one for tool mode if -tool is set)")
}
