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
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"goboard/internal/board"
	"goboard/internal/domain"
	"goboard/internal/interaction"
	"goboard/internal/storage"
)

func newInitCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create an empty board in the board directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := os.MkdirAll(a.boardDir, 0o755); err != nil {
				return err
			}
			return a.withStore(func(ctx context.Context, st storage.Store) error {
				vp, err := st.LoadViewport(ctx)
				if err != nil {
					return err
				}
				if err := st.SaveViewport(ctx, vp); err != nil {
					return err
				}
				a.log.Info("board initialized", slog.String("driver", a.cfg.Storage.Driver))
				fmt.Fprintln(cmd.OutOrStdout(), "Board ready at", a.boardDir)
				return nil
			})
		},
	}
}

func newAddCommand(a *app) *cobra.Command {
	var (
		typ      string
		x, y     float64
		w, h     float64
		fontSize int
	)
	cmd := &cobra.Command{
		Use:   "add <content>",
		Short: "Add a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := domain.ParseCardType(typ)
			if err != nil {
				return err
			}
			c := domain.Card{Type: t, Content: args[0], Position: domain.Point{X: x, Y: y}, FontSize: fontSize}
			if w > 0 || h > 0 {
				c.Size = &domain.Size{W: w, H: h}
			}
			return a.withStore(func(ctx context.Context, st storage.Store) error {
				created, err := st.CreateCard(ctx, c)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), created.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", string(domain.CardText), "card type: text, image or link")
	cmd.Flags().Float64Var(&x, "x", 0, "canvas x")
	cmd.Flags().Float64Var(&y, "y", 0, "canvas y")
	cmd.Flags().Float64Var(&w, "width", 0, "width in canvas units")
	cmd.Flags().Float64Var(&h, "height", 0, "height in canvas units")
	cmd.Flags().IntVar(&fontSize, "font-size", 0, "font size for text cards")
	return cmd
}

func newListCommand(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(func(ctx context.Context, st storage.Store) error {
				cards, err := st.ListCards(ctx)
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(cards)
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tTYPE\tX\tY\tW\tH\tCONTENT")
				for _, c := range cards {
					s := c.EffectiveSize()
					fmt.Fprintf(tw, "%s\t%s\t%.0f\t%.0f\t%.0f\t%.0f\t%s\n", c.ID, c.Type, c.Position.X, c.Position.Y, s.W, s.H, summary(c))
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print cards as JSON")
	return cmd
}

func newRemoveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>...",
		Aliases: []string{"remove"},
		Short:   "Delete cards",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(ctx context.Context, st storage.Store) error {
				for _, id := range args {
					if err := st.DeleteCard(ctx, id); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newEditCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <text>",
		Short: "Replace a text card's content",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(ctx context.Context, st storage.Store) error {
				b, err := board.New(ctx, st, interaction.NewHeadlessHost(nil), board.OptionsFromConfig(a.cfg.Board))
				if err != nil {
					return err
				}
				defer b.Close()
				changed, err := b.UpdateContent(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				if !changed {
					fmt.Fprintln(cmd.OutOrStdout(), "unchanged")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), "updated", args[0])
				return nil
			})
		},
	}
}

func summary(c domain.Card) string {
	if c.Type == domain.CardImage {
		return "[image]"
	}
	r := []rune(strings.ReplaceAll(c.Content, "\n", " "))
	if len(r) > 40 {
		return string(r[:37]) + "..."
	}
	return string(r)
}
