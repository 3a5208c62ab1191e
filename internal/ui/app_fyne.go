//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"goboard/internal/board"
	"goboard/internal/config"
	"goboard/internal/crash"
	"goboard/internal/domain"
	"goboard/internal/export"
	applog "goboard/internal/log"
	"goboard/internal/storage"
	"goboard/internal/vector"
	"goboard/internal/version"
)

// Run opens the board in boardDir (the working directory when empty) in a
// desktop window and blocks until the window closes.
func Run(boardDir string) error {
	cfg, cfgErr := config.Load()
	applog.Init(cfg.Logging.Options())
	l := applog.WithComponent("ui")
	if cfgErr != nil {
		l.Warn("config load failed; using defaults", slog.Any("err", cfgErr))
	}
	if boardDir == "" {
		boardDir = "."
	}
	abs, err := filepath.Abs(boardDir)
	if err != nil {
		return err
	}
	ctx := applog.ContextWithBoard(context.Background(), abs)
	st, err := board.OpenStore(ctx, abs, cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			l.Error("close store", slog.Any("err", err))
		}
	}()
	defer crash.Recover(abs, st)

	fyneApp := app.NewWithID("goboard")
	w := fyneApp.NewWindow("goboard " + version.String())
	prefs := fyneApp.Preferences()
	winW := max(prefs.IntWithFallback("window.width", 1200), 800)
	winH := max(prefs.IntWithFallback("window.height", 800), 600)
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	bc := NewBoardCanvas()
	opts := board.OptionsFromConfig(cfg.Board)
	opts.OnViewportPresent = bc.SetViewport
	b, err := board.New(ctx, st, bc, opts)
	if err != nil {
		return err
	}
	defer b.Close()
	bc.SetViewport(b.Engine.Viewport.Viewport())
	bc.OnScroll = func(at vector.Pt, delta float32) { b.Engine.Viewport.Zoom(at, delta) }

	status := widget.NewLabel("Ready")
	setStatus := func(format string, args ...any) { status.SetText(fmt.Sprintf(format, args...)) }

	mount := func(c domain.Card) {
		pos, size := board.Geometry(c)
		if err := b.Mount(bc.AddCard(c, pos, size), c.ID); err != nil {
			l.Error("mount card", slog.String("card", c.ID), slog.Any("err", err))
			bc.RemoveCard(c.ID)
		}
	}
	for _, c := range b.Cards() {
		mount(c)
	}
	b.Engine.Selection.OnChange(func(_, next string) {
		if next == "" {
			setStatus("Ready")
			return
		}
		setStatus("Selected %s", next)
	})

	// New cards land in the middle of the visible area.
	visibleCenter := func() domain.Point {
		sz := bc.Size()
		p := b.Engine.Viewport.Viewport().ScreenToCanvas(vector.Pt{X: sz.Width / 2, Y: sz.Height / 2})
		return domain.Point{X: float64(p.X), Y: float64(p.Y)}
	}
	addCard := func(t domain.CardType, title string) {
		entry := widget.NewMultiLineEntry()
		if t == domain.CardLink {
			entry = widget.NewEntry()
			entry.SetPlaceHolder("https://")
		}
		form := dialog.NewForm(title, "Add", "Cancel", []*widget.FormItem{
			widget.NewFormItem("Content", entry),
		}, func(ok bool) {
			if !ok {
				return
			}
			c, err := b.AddCard(ctx, domain.Card{Type: t, Content: entry.Text, Position: visibleCenter()})
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			mount(c)
			selectCard(l, b, c.ID)
			bc.Refresh()
		}, w)
		form.Resize(fyne.NewSize(420, 220))
		form.Show()
	}

	// editCard opens an in-place editor for a text card. Enter saves, Escape
	// or Cancel restores the original text.
	editCard := func(id string) {
		c, ok := b.Card(id)
		if !ok {
			return
		}
		if c.Type != domain.CardText {
			setStatus("%v", board.ErrNotText)
			return
		}
		ed := newTextEdit(id, c.Content, b.UpdateContent)
		entry := widget.NewEntry()
		if strings.Contains(c.Content, "\n") {
			entry = widget.NewMultiLineEntry()
		}
		entry.SetText(c.Content)
		var dlg dialog.Dialog
		finish := func(save bool) {
			if ed.done {
				return
			}
			if save {
				changed, err := ed.commit(ctx, entry.Text)
				switch {
				case err != nil:
					dialog.ShowError(err, w)
				case changed:
					if c, ok := b.Card(id); ok {
						bc.UpdateCard(c)
					}
					setStatus("Saved %s", id)
				}
			} else {
				entry.SetText(ed.revert())
			}
			dlg.Hide()
		}
		entry.OnSubmitted = func(string) { finish(true) }
		dlg = dialog.NewCustomConfirm("Edit Text", "Save", "Cancel", entry, finish, w)
		dlg.Resize(fyne.NewSize(420, 200))
		dlg.Show()
		w.Canvas().Focus(entry)
	}
	bc.OnEdit = editCard

	btnText := widget.NewButton("Add Text", func() { addCard(domain.CardText, "New Text Card") })
	btnLink := widget.NewButton("Add Link", func() { addCard(domain.CardLink, "New Link Card") })
	btnEdit := widget.NewButton("Edit", func() {
		id, ok := b.Engine.Selection.Selected()
		if !ok {
			setStatus("Nothing selected")
			return
		}
		editCard(id)
	})
	btnDelete := widget.NewButton("Delete", func() {
		id, ok := b.Engine.Selection.Selected()
		if !ok {
			setStatus("Nothing selected")
			return
		}
		if err := b.RemoveCard(ctx, id); err != nil {
			dialog.ShowError(err, w)
			return
		}
		bc.RemoveCard(id)
	})
	fontStep := func(up bool) {
		n, err := b.AdjustFontSize(ctx, up)
		switch {
		case errors.Is(err, board.ErrNoSelection), errors.Is(err, board.ErrNotText):
			setStatus("%v", err)
		case err != nil:
			dialog.ShowError(err, w)
		default:
			if id, ok := b.Engine.Selection.Selected(); ok {
				if c, ok := b.Card(id); ok {
					bc.UpdateCard(c)
				}
			}
			setStatus("Font size %d", n)
		}
	}
	btnFontUp := widget.NewButton("A+", func() { fontStep(true) })
	btnFontDown := widget.NewButton("A-", func() { fontStep(false) })
	btnZoomReset := widget.NewButton("100%", func() {
		sz := bc.Size()
		b.Engine.Viewport.ZoomTo(vector.Pt{X: sz.Width / 2, Y: sz.Height / 2}, 1)
	})
	btnPDF := widget.NewButton("Export PDF", func() {
		out := filepath.Join(abs, "exports", "board.pdf")
		if err := export.BoardPDF(b.Cards(), out, export.PDFOptions{Title: filepath.Base(abs)}); err != nil {
			dialog.ShowError(err, w)
			return
		}
		setStatus("Exported %s", out)
	})
	btnSnapshot := widget.NewButton("Save Snapshot", func() {
		snap, err := storage.ExportSnapshot(ctx, st)
		if err == nil {
			err = storage.SaveSnapshot(filepath.Join(abs, storage.SnapshotFileName), snap)
		}
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		setStatus("Snapshot saved at %s", time.Now().Format(time.Kitchen))
	})

	toolbar := container.NewHBox(btnText, btnLink, btnEdit, btnDelete, widget.NewSeparator(),
		btnFontDown, btnFontUp, btnZoomReset, widget.NewSeparator(), btnPDF, btnSnapshot)
	w.SetContent(container.NewBorder(toolbar, status, nil, nil, bc))

	w.Canvas().SetOnTypedKey(func(k *fyne.KeyEvent) {
		if k.Name == fyne.KeyEscape {
			bc.CancelPointer()
		}
	})
	fyneApp.Lifecycle().SetOnExitedForeground(bc.CancelPointer)
	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
	})

	l.Info("starting UI", slog.String("board", abs), slog.Int("cards", len(b.Cards())))
	w.ShowAndRun()
	return nil
}
