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
	"flag"
	"fmt"
	"log/slog"
	"time"

	"scenewright/internal/backend"
	"scenewright/internal/config"
	"scenewright/internal/domain"
)

func ttlFlag(fs *flag.FlagSet) {
	fs.Duration("ttl", 12*time.Hour, "token lifetime")
}

func serveFlags(fs *flag.FlagSet) {
	fs.String("addr", "", "listen address (default from config)")
	fs.String("driver", "", "store driver: memory, postgres or mongo (default from config)")
}

// client returns a backend client using the keyring token; commands other than login need one.
func (a *app) client() (*backend.Client, error) {
	if a.token == "" {
		return nil, fmt.Errorf("%w: not signed in; run 'scenewright login <subject>'", domain.ErrPrecondition)
	}
	return backend.NewClientFromConfig(a.cfg.Backend, a.token), nil
}

func cmdLogin(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	subject, err := oneArg(args)
	if err != nil {
		return err
	}
	ttl, _ := fs.Lookup("ttl").Value.(flag.Getter).Get().(time.Duration)
	c := backend.NewClientFromConfig(a.cfg.Backend, "")
	tok, exp, err := c.Login(ctx, subject, ttl)
	if err != nil {
		return err
	}
	if err := config.SaveToken(tok); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	a.log.Info("signed in", slog.String("subject", subject), slog.String("backend", c.BaseURL))
	_, err = fmt.Fprintf(a.stdout, "Signed in as %s until %s\n", subject, exp.Local().Format(time.DateTime))
	return err
}

func cmdPush(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	id, err := oneArg(args)
	if err != nil {
		return err
	}
	c, err := a.client()
	if err != nil {
		return err
	}
	store, err := a.openStore(ctx, fs)
	if err != nil {
		return err
	}
	defer store.Close()
	payload, err := store.Load(ctx, id)
	if err != nil {
		return err
	}
	if err := c.Save(ctx, id, payload); err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.stdout, "Pushed %s to %s\n", id, c.BaseURL)
	return err
}

// cmdPull loads the remote project through an editor so only a valid tree reaches the local store.
func cmdPull(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	id, err := oneArg(args)
	if err != nil {
		return err
	}
	c, err := a.client()
	if err != nil {
		return err
	}
	store, err := a.openStore(ctx, fs)
	if err != nil {
		return err
	}
	defer store.Close()
	ed := a.newEditor(domain.NewProject(""), c)
	if err := ed.Load(ctx, id); err != nil {
		return err
	}
	_, payload, err := ed.Snapshot()
	if err != nil {
		return err
	}
	if err := store.Save(ctx, id, payload); err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.stdout, "Pulled %q into %s\n", ed.Project().Title, store.Dir())
	return err
}

func cmdServe(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	cfg := a.cfg.Server
	if v := flagString(fs, "addr"); v != "" {
		cfg.Addr = v
	}
	if v := flagString(fs, "driver"); v != "" {
		cfg.Driver = v
	}
	return backend.Run(ctx, cfg)
}
