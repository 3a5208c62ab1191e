/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic into a crash report and a last board snapshot.
package crash

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "goboard/internal/log"
	"goboard/internal/storage"
	"goboard/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// snapshotTimeout bounds the autosave done while crashing.
const snapshotTimeout = 3 * time.Second

// Recover captures a panic, logs it with the stack, writes a crash report and
// tries to save the board to board.json so OpenOrRecover can restore it.
// boardDir and st may be empty/nil when no board is open.
//
// Usage: defer crash.Recover(dir, st)
func Recover(boardDir string, st storage.Store) {
	if r := recover(); r != nil {
		handle(r, boardDir, st)
	}
}

// RecoverFunc is Recover for callers whose board is opened after the defer
// statement runs; state is read only once a panic is caught.
//
// Usage: defer crash.RecoverFunc(func() (string, storage.Store) { return dir, st })
func RecoverFunc(state func() (string, storage.Store)) {
	if r := recover(); r != nil {
		boardDir, st := state()
		handle(r, boardDir, st)
	}
}

func handle(r any, boardDir string, st storage.Store) {
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	reportPath, err := writeReport(boardDir, r, stack)
	if err != nil {
		l.Error("write crash report failed", slog.Any("err", err))
	}
	if st != nil && boardDir != "" {
		if path, err := autosave(boardDir, st); err != nil {
			l.Error("autosave crash snapshot failed", slog.Any("err", err))
		} else {
			l.Info("autosave crash snapshot written", slog.String("path", path))
		}
	}

	if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
		l.Error("failed to write crash message to stderr", slog.Any("err", err))
	}
	if _, err := fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
		l.Error("failed to write version info to stderr", slog.Any("err", err))
	}
	exitFn(2)
}

func autosave(boardDir string, st storage.Store) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()
	snap, err := storage.ExportSnapshot(ctx, st)
	if err != nil {
		return "", err
	}
	path := filepath.Join(boardDir, storage.SnapshotFileName)
	return path, storage.SaveSnapshot(path, snap)
}

// reportDir is <board>/.goboard/backups, or the temp dir without a board.
func reportDir(boardDir string) string {
	if boardDir == "" {
		return os.TempDir()
	}
	dir := filepath.Join(boardDir, storage.BoardDirName, storage.BackupsDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return os.TempDir()
	}
	return dir
}

func writeReport(boardDir string, panicVal any, stack []byte) (string, error) {
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(reportDir(boardDir), fmt.Sprintf("crash-%s.log", stamp))

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "goboard crash report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if boardDir != "" {
		_, _ = fmt.Fprintf(&buf, "Board: %s\n", boardDir)
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return path, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			applog.WithComponent("crash").Error("failed to close crash report file", slog.Any("err", err), slog.String("path", path))
		}
	}()
	if _, err := f.Write(buf.Bytes()); err != nil {
		return path, err
	}
	_ = f.Sync()
	return path, nil
}
