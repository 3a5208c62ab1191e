/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Command goboard manages an infinite-canvas board from the command line and
// launches the desktop UI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"goboard/internal/board"
	"goboard/internal/config"
	"goboard/internal/crash"
	applog "goboard/internal/log"
	"goboard/internal/storage"
	"goboard/internal/version"
)

// app is the state shared by every subcommand.
type app struct {
	boardDir string
	cfg      config.AppConfig
	log      *slog.Logger

	// store is set by openStore so crash recovery can snapshot it.
	store storage.Store
}

func main() {
	a := &app{}
	defer crash.RecoverFunc(func() (string, storage.Store) { return a.boardDir, a.store })
	if err := newRootCommand(a).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "goboard",
		Short:         "goboard - an infinite canvas of text, image and link cards",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	root.PersistentFlags().StringVarP(&a.boardDir, "board", "b", ".", "board directory")

	root.AddCommand(newVersionCommand())
	root.AddCommand(newInitCommand(a))
	root.AddCommand(newAddCommand(a))
	root.AddCommand(newListCommand(a))
	root.AddCommand(newRemoveCommand(a))
	root.AddCommand(newEditCommand(a))
	root.AddCommand(newExportCommand(a))
	root.AddCommand(newSnapshotCommand(a))
	root.AddCommand(newReplayCommand(a))
	root.AddCommand(newConfigCommand(a))
	root.AddCommand(newUICommand(a))
	return root
}

// setup loads the config and initializes logging before any subcommand runs.
func (a *app) setup() error {
	cfg, err := config.Load()
	applog.Init(cfg.Logging.Options())
	a.log = applog.WithComponent("cli")
	if err != nil {
		a.log.Warn("config load failed; using defaults", slog.Any("err", err))
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	a.cfg = cfg
	abs, err := filepath.Abs(a.boardDir)
	if err != nil {
		return err
	}
	a.boardDir = abs
	return nil
}

func (a *app) context() context.Context {
	return applog.ContextWithBoard(context.Background(), a.boardDir)
}

// openStore opens the configured store; the caller closes it.
func (a *app) openStore(ctx context.Context) (storage.Store, error) {
	st, err := board.OpenStore(ctx, a.boardDir, a.cfg.Storage)
	if err != nil {
		return nil, err
	}
	a.store = st
	return st, nil
}

// withStore runs fn against an open store and closes it afterwards.
func (a *app) withStore(fn func(ctx context.Context, st storage.Store) error) error {
	ctx := a.context()
	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		a.store = nil
		if cerr := st.Close(); cerr != nil {
			a.log.Error("close store", slog.Any("err", cerr))
		}
	}()
	return fn(ctx, st)
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
