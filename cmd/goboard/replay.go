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
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"goboard/internal/board"
	"goboard/internal/replay"
	"goboard/internal/storage"
)

func newReplayCommand(a *app) *cobra.Command {
	var inPlace bool
	cmd := &cobra.Command{
		Use:   "replay <script.json>",
		Short: "Play a recorded pointer script through the interaction engine",
		Long: `Replay validates the script, plays its steps on a headless board and
prints the resulting commits and cards as JSON. By default the script runs on
a scratch board; --in-place applies it to the board directory's store.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			script, err := replay.Parse(data)
			if err != nil {
				return err
			}
			opts := board.OptionsFromConfig(a.cfg.Board)
			run := func(ctx context.Context, st storage.Store) error {
				res, err := replay.Run(ctx, st, script, opts)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			if inPlace {
				return a.withStore(run)
			}
			dir, err := os.MkdirTemp("", "goboard-replay-")
			if err != nil {
				return err
			}
			defer os.RemoveAll(dir)
			ctx := a.context()
			st, err := storage.OpenSQLite(ctx, dir)
			if err != nil {
				return fmt.Errorf("scratch board: %w", err)
			}
			defer st.Close()
			return run(ctx, st)
		},
	}
	cmd.Flags().BoolVar(&inPlace, "in-place", false, "apply the script to the board's own store")
	return cmd
}
