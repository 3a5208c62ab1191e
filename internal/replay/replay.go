/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package replay runs scripted pointer gestures against a board without a UI.
// Scripts are JSON documents validated against an embedded JSON Schema; every
// step drives the headless host exactly as a toolkit adapter would.
package replay

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"goboard/internal/board"
	"goboard/internal/domain"
	"goboard/internal/interaction"
	applog "goboard/internal/log"
	"goboard/internal/storage"
	"goboard/internal/vector"
)

//go:embed script.schema.json
var schemaJSON []byte

// Step ops.
const (
	OpDown           = "down"
	OpHandleDown     = "handle_down"
	OpBackgroundDown = "background_down"
	OpMove           = "move"
	OpUp             = "up"
	OpCancel         = "cancel"
	OpSelect         = "select"
	OpZoom           = "zoom"
	OpUnmount        = "unmount"
	OpFont           = "font"
	OpEdit           = "edit"
)

// Script is a parsed gesture script.
type Script struct {
	Viewport *domain.Viewport `json:"viewport,omitempty"`
	Cards    []domain.Card    `json:"cards,omitempty"`
	Steps    []Step           `json:"steps"`
}

// Step is one pointer or board action. Coordinates are screen pixels.
type Step struct {
	Op    string  `json:"op"`
	Card  string  `json:"card,omitempty"`
	X     float32 `json:"x,omitempty"`
	Y     float32 `json:"y,omitempty"`
	Delta float32 `json:"delta,omitempty"`
	Up    bool    `json:"up,omitempty"`
	Text  string  `json:"text,omitempty"` // edit only
}

// ValidationError lists every schema violation of a script.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid script: " + strings.Join(e.Problems, "; ")
}

// Parse validates data against the script schema and decodes it.
func Parse(data []byte) (Script, error) {
	var s Script
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaJSON), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return s, fmt.Errorf("validate script: %w", err)
	}
	if !result.Valid() {
		ve := &ValidationError{}
		for _, e := range result.Errors() {
			ve.Problems = append(ve.Problems, e.String())
		}
		return s, ve
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("decode script: %w", err)
	}
	return s, nil
}

// Result is what a replay committed and the board state afterwards.
type Result struct {
	Commits  []board.Commit  `json:"commits"`
	Cards    []domain.Card   `json:"cards"`
	Viewport domain.Viewport `json:"viewport"`
}

// StepError reports the step a replay stopped at.
type StepError struct {
	Index int
	Op    string
	Err   error
}

func (e *StepError) Error() string { return fmt.Sprintf("step %d (%s): %v", e.Index, e.Op, e.Err) }
func (e *StepError) Unwrap() error { return e.Err }

// ErrUnknownCard is wrapped when a step names a card that is not mounted.
var ErrUnknownCard = errors.New("unknown card")

// Run seeds st with the script's viewport and missing cards, mounts every card
// of the board on a headless host and plays the steps in order.
func Run(ctx context.Context, st storage.Store, s Script, opts board.Options) (Result, error) {
	l := applog.WithOperation(applog.WithComponent("replay"), "run")
	if err := seed(ctx, st, s); err != nil {
		return Result{}, err
	}
	host := interaction.NewHeadlessHost(nil)
	b, err := board.New(ctx, st, host, opts)
	if err != nil {
		return Result{}, err
	}
	defer b.Close()
	host.SetScale(b.Engine.Viewport.Scale)

	els := map[string]*interaction.HeadlessElement{}
	for _, c := range b.Cards() {
		el := host.NewElement(board.Geometry(c))
		if err := b.Mount(el, c.ID); err != nil {
			return Result{}, fmt.Errorf("mount %s: %w", c.ID, err)
		}
		els[c.ID] = el
	}

	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if err := apply(ctx, b, host, els, step); err != nil {
			return Result{}, &StepError{Index: i, Op: step.Op, Err: err}
		}
	}
	res := Result{Commits: b.Commits(), Cards: b.Cards(), Viewport: board.FromVectorViewport(b.Engine.Viewport.Viewport())}
	l.Info("replay finished", slog.Int("steps", len(s.Steps)), slog.Int("commits", len(res.Commits)))
	return res, nil
}

func seed(ctx context.Context, st storage.Store, s Script) error {
	if s.Viewport != nil {
		if err := st.SaveViewport(ctx, *s.Viewport); err != nil {
			return err
		}
	}
	for _, c := range s.Cards {
		_, err := st.GetCard(ctx, c.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		if _, err := st.CreateCard(ctx, c); err != nil {
			return fmt.Errorf("seed card %s: %w", c.ID, err)
		}
	}
	return nil
}

func apply(ctx context.Context, b *board.Board, host *interaction.HeadlessHost, els map[string]*interaction.HeadlessElement, s Step) error {
	element := func() (*interaction.HeadlessElement, error) {
		el, ok := els[s.Card]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCard, s.Card)
		}
		return el, nil
	}
	switch s.Op {
	case OpDown:
		el, err := element()
		if err != nil {
			return err
		}
		el.Press(s.X, s.Y)
	case OpHandleDown:
		el, err := element()
		if err != nil {
			return err
		}
		h := el.Handle()
		if h == nil {
			return fmt.Errorf("card %s has no resize handle", s.Card)
		}
		h.Press(s.X, s.Y)
	case OpBackgroundDown:
		host.PressBackground(s.X, s.Y)
	case OpMove:
		host.Move(s.X, s.Y)
	case OpUp:
		host.Release(s.X, s.Y)
	case OpCancel:
		host.CancelPointer()
	case OpSelect:
		return b.Select(s.Card)
	case OpZoom:
		b.Engine.Viewport.Zoom(vector.Pt{X: s.X, Y: s.Y}, s.Delta)
	case OpUnmount:
		if _, err := element(); err != nil {
			return err
		}
		b.Unmount(s.Card)
		delete(els, s.Card)
	case OpFont:
		if _, err := b.AdjustFontSize(ctx, s.Up); err != nil {
			return err
		}
	case OpEdit:
		if _, err := b.UpdateContent(ctx, s.Card, s.Text); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown op %q", s.Op)
	}
	return nil
}
