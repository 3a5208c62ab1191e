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
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "goboard/internal/log"
)

// OpenOrRecover opens the board database. If it cannot be opened or fails
// SQLite's quick_check, the damaged file is copied to .goboard/backups, a fresh
// database is created and, when <boardDir>/board.json exists, the snapshot is
// imported into it. recovered reports whether that happened.
func OpenOrRecover(ctx context.Context, boardDir string) (st *SQLiteStore, recovered bool, err error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "recover").With(slog.String("board", boardDir))
	st, err = OpenSQLite(ctx, boardDir)
	if err == nil {
		if healthy(ctx, st) {
			return st, false, nil
		}
		_ = st.Close()
		l.Warn("board database failed integrity check")
	} else {
		l.Warn("board database unreadable", slog.Any("err", err))
	}
	path := DBPath(boardDir)
	backupDBFile(path)
	for _, suffix := range []string{"", "-wal", "-shm"} {
		_ = os.Remove(path + suffix)
	}
	st, err = OpenSQLite(ctx, boardDir)
	if err != nil {
		return nil, false, fmt.Errorf("recreate board database: %w", err)
	}
	snapPath := filepath.Join(boardDir, SnapshotFileName)
	if _, statErr := os.Stat(snapPath); statErr == nil {
		snap, lerr := LoadSnapshot(snapPath)
		if lerr == nil {
			lerr = ImportSnapshot(ctx, st, snap)
		}
		if lerr != nil {
			l.Error("restore from snapshot failed", slog.Any("err", lerr))
		} else {
			l.Info("board restored from snapshot", slog.Int("cards", len(snap.Cards)))
		}
	}
	return st, true, nil
}

func healthy(ctx context.Context, st *SQLiteStore) bool {
	var chk string
	if err := st.db.QueryRowContext(ctx, `PRAGMA quick_check;`).Scan(&chk); err != nil || !strings.Contains(strings.ToLower(chk), "ok") {
		return false
	}
	_, err := st.db.ExecContext(ctx, `SELECT 1 FROM cards LIMIT 1;`)
	return err == nil
}

// backupDBFile copies the database file into a timestamped backup in .goboard/backups.
func backupDBFile(dbPath string) {
	bdir := filepath.Join(filepath.Dir(dbPath), BackupsDirName)
	stamp := time.Now().Format("20060102-150405")
	_ = copyFile(dbPath, filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(dbPath), stamp)))
}
