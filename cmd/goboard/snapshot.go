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
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"goboard/internal/storage"
)

func newSnapshotCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save or restore board.json",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "save",
		Short: "Write the board to board.json, keeping a timestamped backup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(func(ctx context.Context, st storage.Store) error {
				snap, err := storage.ExportSnapshot(ctx, st)
				if err != nil {
					return err
				}
				path := filepath.Join(a.boardDir, storage.SnapshotFileName)
				if err := storage.SaveSnapshot(path, snap); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %d cards to %s\n", len(snap.Cards), path)
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "restore",
		Short: "Import board.json into the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(func(ctx context.Context, st storage.Store) error {
				snap, err := storage.LoadSnapshot(filepath.Join(a.boardDir, storage.SnapshotFileName))
				if err != nil {
					return err
				}
				if err := storage.ImportSnapshot(ctx, st, snap); err != nil {
					return err
				}
				a.log.Info("snapshot restored", slog.Int("cards", len(snap.Cards)))
				fmt.Fprintf(cmd.OutOrStdout(), "Restored %d cards\n", len(snap.Cards))
				return nil
			})
		},
	})
	return cmd
}
