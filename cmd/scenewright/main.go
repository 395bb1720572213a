/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"scenewright/internal/config"
	"scenewright/internal/crash"
	"scenewright/internal/domain"
	applog "scenewright/internal/log"
	"scenewright/internal/version"
)

// errUsage makes run print the usage text and exit with status 2.
var errUsage = errors.New("usage")

type app struct {
	cfg    config.AppConfig
	token  string
	stdout io.Writer
	stderr io.Writer
	log    *slog.Logger
	crash  *crash.Target
}

type command struct {
	name  string
	args  string
	help  string
	run   func(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error
	flags func(fs *flag.FlagSet)
}

var commands []command

func init() {
	commands = []command{
		{name: "version", help: "Show version", run: cmdVersion},
		{name: "new", args: "<title>", help: "Create a project in the projects directory and print its id", run: cmdNew, flags: dirFlag},
		{name: "list", help: "List projects, most recently updated first", run: cmdList, flags: dirFlag},
		{name: "search", args: "<text>", help: "Full-text search over slide and element text", run: cmdSearch, flags: searchFlags},
		{name: "info", args: "<id>", help: "Print a project summary", run: cmdInfo, flags: dirFlag},
		{name: "graph", args: "<id>", help: "Print the scene navigation graph as Graphviz DOT", run: cmdGraph, flags: dirFlag},
		{name: "validate", args: "<file>", help: "Check a project or export file", run: cmdValidate},
		{name: "pdf", args: "<id>", help: "Export a storyboard PDF", run: cmdPDF, flags: pdfFlags},
		{name: "thumbs", args: "<id>", help: "Render PNG wireframe thumbnails of every slide", run: cmdThumbs, flags: thumbFlags},
		{name: "login", args: "<subject>", help: "Obtain a backend token and keep it in the OS keyring", run: cmdLogin, flags: ttlFlag},
		{name: "push", args: "<id>", help: "Upload a local project to the backend", run: cmdPush, flags: dirFlag},
		{name: "pull", args: "<id>", help: "Download a project from the backend into the projects directory", run: cmdPull, flags: dirFlag},
		{name: "serve", help: "Run the project backend", run: cmdServe, flags: serveFlags},
	}
}

func usage(w io.Writer) {
	_, _ = fmt.Fprintf(w, "Scenewright %s\n\nUsage:\n", version.String())
	for _, c := range commands {
		_, _ = fmt.Fprintf(w, "  scenewright %-8s %-10s %s\n", c.name, c.args, c.help)
	}
	_, _ = fmt.Fprintln(w, "\nRun 'scenewright <command> -h' for command flags.")
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	target := &crash.Target{}
	defer crash.Recover(target)

	cfg, token, cfgErr := config.Load()
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
		Output:    stderr,
	})
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config file ignored", slog.Any("err", cfgErr))
	}
	if len(args) == 0 {
		usage(stdout)
		return 0
	}
	name := args[0]
	switch name {
	case "--version", "-v":
		name = "version"
	case "help", "-h", "--help":
		usage(stdout)
		return 0
	}
	var cmd *command
	for i := range commands {
		if commands[i].name == name {
			cmd = &commands[i]
		}
	}
	if cmd == nil {
		_, _ = fmt.Fprintf(stderr, "unknown command %q\n\n", name)
		usage(stderr)
		return 2
	}

	fs := flag.NewFlagSet(cmd.name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	if cmd.flags != nil {
		cmd.flags(fs)
	}
	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	a := &app{cfg: cfg, token: token, stdout: stdout, stderr: stderr, log: applog.WithOperation(l, cmd.name), crash: target}
	a.log.Debug("start", slog.Int("args", fs.NArg()))
	if err := cmd.run(ctx, a, fs, fs.Args()); err != nil {
		if errors.Is(err, errUsage) {
			_, _ = fmt.Fprintf(stderr, "usage: scenewright %s %s\n", cmd.name, cmd.args)
			fs.PrintDefaults()
			return 2
		}
		a.log.Debug("command failed", slog.Any("err", err))
		_, _ = fmt.Fprintf(stderr, "Error: %s\n", describe(err))
		return 1
	}
	return 0
}

// describe prefers the user-facing message for domain errors and keeps the detail for the rest.
func describe(err error) string {
	for _, sentinel := range []error{domain.ErrNotFound, domain.ErrFormat, domain.ErrTransport, domain.ErrPrecondition} {
		if errors.Is(err, sentinel) {
			return domain.UserMessage(err) + " (" + err.Error() + ")"
		}
	}
	return err.Error()
}

func cmdVersion(_ context.Context, a *app, _ *flag.FlagSet, _ []string) error {
	_, err := fmt.Fprintln(a.stdout, version.String())
	return err
}

// oneArg returns the single positional argument or errUsage.
func oneArg(args []string) (string, error) {
	if len(args) != 1 || args[0] == "" {
		return "", errUsage
	}
	return args[0], nil
}
