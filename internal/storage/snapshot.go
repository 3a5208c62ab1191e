/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"goboard/internal/domain"
)

const (
	SnapshotFileName = "board.json"
	BackupsDirName   = "backups"

	snapshotFormat = 1
)

// Snapshot is the portable JSON form of a board.
type Snapshot struct {
	Format   int             `json:"format"`
	Viewport domain.Viewport `json:"viewport"`
	Cards    []domain.Card   `json:"cards"`
}

// ExportSnapshot reads the whole board from st.
func ExportSnapshot(ctx context.Context, st Store) (Snapshot, error) {
	cards, err := st.ListCards(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	vp, err := st.LoadViewport(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	if cards == nil {
		cards = []domain.Card{}
	}
	return Snapshot{Format: snapshotFormat, Viewport: vp, Cards: cards}, nil
}

// ImportSnapshot writes snap into st. Cards whose id already exists get their
// geometry and font size overwritten; new ids are created.
func ImportSnapshot(ctx context.Context, st Store, snap Snapshot) error {
	for _, c := range snap.Cards {
		if c.ID == "" {
			if _, err := st.CreateCard(ctx, c); err != nil {
				return err
			}
			continue
		}
		_, err := st.GetCard(ctx, c.ID)
		switch {
		case errors.Is(err, ErrNotFound):
			if _, err := st.CreateCard(ctx, c); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if err := st.UpdateCardPosition(ctx, c.ID, c.Position.X, c.Position.Y); err != nil {
				return err
			}
			if err := st.UpdateCardContent(ctx, c.ID, c.Content); err != nil {
				return err
			}
			if c.Size != nil {
				if err := st.UpdateCardSize(ctx, c.ID, c.Size.W, c.Size.H); err != nil {
					return err
				}
			}
			if c.FontSize > 0 {
				if err := st.UpdateCardFontSize(ctx, c.ID, c.FontSize); err != nil {
					return err
				}
			}
		}
	}
	if snap.Viewport.Scale > 0 {
		return st.SaveViewport(ctx, snap.Viewport)
	}
	return nil
}

// SaveSnapshot writes snap to path with transactional semantics and a
// timestamped backup of the previous file (if present) in a sibling backups dir.
func SaveSnapshot(path string, snap Snapshot) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("snapshot path is required")
	}
	if snap.Format == 0 {
		snap.Format = snapshotFormat
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure snapshot dir: %w", err)
	}
	if _, statErr := os.Stat(path); statErr == nil {
		stamp := time.Now().Format("20060102-150405")
		bpath := filepath.Join(dir, BackupsDirName, fmt.Sprintf("%s.%s.bak", filepath.Base(path), stamp))
		if cerr := copyFile(path, bpath); cerr != nil {
			return fmt.Errorf("backup current snapshot: %w", cerr)
		}
	}

	// Transactional write: to temp file in same directory, then rename over target
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		return fmt.Errorf("write temp snapshot: %w", werr)
	}
	// On Windows, replace by removing destination first if needed
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	if rerr := os.Rename(temp, path); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace snapshot: %w", rerr)
	}
	return nil
}

// LoadSnapshot reads a snapshot. If the file cannot be read or parsed it falls
// back to the latest backup.
func LoadSnapshot(path string) (Snapshot, error) {
	snap, err := readSnapshot(path)
	if err == nil {
		return snap, nil
	}
	bsnap, berr := latestBackup(path)
	if berr != nil {
		return Snapshot{}, fmt.Errorf("open snapshot: %w; backup attempt: %v", err, berr)
	}
	return bsnap, nil
}

func readSnapshot(path string) (Snapshot, error) {
	var s Snapshot
	b, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return s, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if s.Format > snapshotFormat {
		return s, fmt.Errorf("snapshot format %d is newer than supported %d", s.Format, snapshotFormat)
	}
	return s, nil
}

func latestBackup(path string) (Snapshot, error) {
	bdir := filepath.Join(filepath.Dir(path), BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read backups dir: %w", err)
	}
	prefix := filepath.Base(path) + "."
	var candidates []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".bak") {
			candidates = append(candidates, filepath.Join(bdir, name))
		}
	}
	if len(candidates) == 0 {
		return Snapshot{}, errors.New("no backups found")
	}
	sort.Strings(candidates) // timestamp in name yields lexicographic order
	return readSnapshot(candidates[len(candidates)-1])
}

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
