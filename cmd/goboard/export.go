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
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"goboard/internal/export"
	"goboard/internal/storage"
)

func newExportCommand(a *app) *cobra.Command {
	var (
		format string
		scale  float64
		margin float64
	)
	cmd := &cobra.Command{
		Use:   "export <out>",
		Short: "Export the board as pdf, png or json",
		Long: `Export every card of the board. The format defaults to the file
extension of <out>. Relative paths are resolved under <board>/exports.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := args[0]
			if !filepath.IsAbs(out) {
				out = filepath.Join(a.boardDir, "exports", out)
			}
			f := strings.ToLower(format)
			if f == "" {
				f = strings.TrimPrefix(strings.ToLower(filepath.Ext(out)), ".")
			}
			return a.withStore(func(ctx context.Context, st storage.Store) error {
				cards, err := st.ListCards(ctx)
				if err != nil {
					return err
				}
				switch f {
				case "pdf":
					err = export.BoardPDF(cards, out, export.PDFOptions{Title: filepath.Base(a.boardDir), Margin: margin})
				case "png":
					err = export.BoardPNG(cards, out, export.PNGOptions{Scale: scale, Margin: margin})
				case "json":
					err = exportJSON(ctx, st, out)
				default:
					return fmt.Errorf("unsupported export format %q (want pdf, png or json)", f)
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Exported", out)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "pdf, png or json")
	cmd.Flags().Float64Var(&scale, "scale", 1, "png pixels per canvas unit")
	cmd.Flags().Float64Var(&margin, "margin", export.DefaultMargin, "margin around the cards")
	return cmd
}

func exportJSON(ctx context.Context, st storage.Store, out string) error {
	snap, err := storage.ExportSnapshot(ctx, st)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(out, b, 0o644)
}
