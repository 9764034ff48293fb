package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/wl-compositor/wlr-screencopy/config"
	"github.com/sirupsen/logrus"
	"github.com/swaywm/go-wlroots/wlroots"
)

func fatal(msg string, err error) {
	fmt.Printf("error %s: %s\n", msg, err)
	os.Exit(1)
}

func wlMain(conf *config.Config) {
	wlroots.OnLog(wlroots.LogImportanceError, func(importance wlroots.LogImportance, msg string) {
		switch importance {
		case wlroots.LogImportanceDebug:
			logrus.Debugln(msg)
		case wlroots.LogImportanceInfo:
			logrus.Infoln(msg)
		case wlroots.LogImportanceError:
			logrus.Errorln(msg)
		case wlroots.LogImportanceSilent:
			return
		}
	})

	// start the server
	server, err := NewServer(conf.ScreencopyMaxAreas)
	if err != nil {
		fatal("initializing server", err)
	}
	if err = server.Start(); err != nil {
		fatal("starting server", err)
	}

	switch conf.StartType {
	case config.START_REPL:
		go replRunner(server)
	case config.START_SINGLE_COMMAND:
		runStartCommand(conf.StartCommand)
	case config.START_NONE:
		// nothing to launch alongside the compositor
	}

	// start the wayland event loop
	if err = server.Run(); err != nil {
		fatal("running server", err)
	}
}

func runStartCommand(cmdline *string) {
	if cmdline == nil || strings.TrimSpace(*cmdline) == "" {
		logrus.Warnln("start_type is single_command but no start_command is configured")
		return
	}
	parts := strings.Fields(*cmdline)
	cmd := exec.Command(parts[0], parts[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		logrus.WithError(err).WithField("command", *cmdline).Errorln("failed to start command")
		return
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			logrus.WithError(err).WithField("command", *cmdline).Warnln("start command exited with error")
		}
	}()
}
