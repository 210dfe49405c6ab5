/*
Copyright 2018 Iguazio Systems Ltd.

Licensed under the Apache License, Version 2.0 (the "License") with
an addition restriction as set forth herein. You may not use this
file except in compliance with the License. You may obtain a copy of
the License at http://www.apache.org/licenses/LICENSE-2.0.

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
implied. See the License for the specific language governing
permissions and limitations under the License.

In addition, you may not use the software for any purposes that are
illegal under applicable law, and the grant of the foregoing license
under the Apache 2.0 license is conditioned upon your compliance with
such restriction.
*/

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	"github.com/nuclio/errors"

	"github.com/v3io/tabular"
	tabularHttp "github.com/v3io/tabular/http"
	"github.com/v3io/tabular/transform"
)

var (
	// Version is tabulard version (populated by the build process)
	Version = "unknown"
)

func loadConfig(configPath string, configContents string) (*tabular.Config, error) {
	switch {
	case configContents != "":
		return tabular.NewConfigFromContents([]byte(configContents), "yaml")
	case configPath != "":
		return tabular.LoadConfig(configPath)
	}

	return tabular.NewConfig(), nil
}

func run(configPath string, configContents string, addr string, logLevel string) error {
	cfg, err := loadConfig(configPath, configContents)
	if err != nil {
		return errors.Wrap(err, "Failed to load config")
	}

	if addr != "" {
		cfg.HTTP.Address = addr
	}

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	loggerInstance, err := tabular.NewLogger(cfg.Log.Level)
	if err != nil {
		return errors.Wrap(err, "Failed to create logger")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine, err := transform.NewEngine(ctx, loggerInstance, cfg)
	if err != nil {
		return errors.Wrap(err, "Failed to create engine")
	}
	defer engine.Close()

	server, err := tabularHttp.NewServer(cfg, engine, loggerInstance)
	if err != nil {
		return errors.Wrap(err, "Failed to create HTTP server")
	}

	if err := server.Start(); err != nil {
		return errors.Wrap(err, "Failed to start HTTP server")
	}

	fmt.Printf("server running on http=%s\n", cfg.HTTP.Address)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for server.State() == tabularHttp.RunningState {
		select {
		case sig := <-signals:
			loggerInstance.InfoWith("Shutting down", "signal", sig.String())
			if err := server.Stop(); err != nil {
				return errors.Wrap(err, "Failed to stop HTTP server")
			}
		case <-ticker.C:
		}
	}

	if err := server.Err(); err != nil {
		return errors.Wrap(err, "HTTP server error")
	}

	fmt.Println("server down")
	return nil
}

func main() {
	var config struct {
		path        string
		contents    string
		addr        string
		logLevel    string
		showVersion bool
	}

	flag.StringVar(&config.path, "config", "", "path to configuration file (YAML, or TOML with .toml extension)")
	flag.StringVar(&config.contents, "config-contents", "", "configuration (YAML)")
	flag.StringVar(&config.addr, "addr", "", "address to listen on HTTP (overrides configuration)")
	flag.StringVar(&config.logLevel, "log-level", "", "log level (overrides configuration)")
	flag.BoolVar(&config.showVersion, "version", false, "show version and exit")
	flag.Parse()

	if config.showVersion {
		fmt.Printf("%s version %s\n", path.Base(os.Args[0]), Version)
		return
	}

	if err := run(config.path, config.contents, config.addr, config.logLevel); err != nil {
		errors.PrintErrorStack(os.Stderr, err, 10)
		os.Exit(1)
	}
}
