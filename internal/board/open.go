/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package board

import (
	"context"
	"fmt"
	"log/slog"

	"goboard/internal/backend"
	"goboard/internal/config"
	applog "goboard/internal/log"
	"goboard/internal/storage"
)

// OpenStore opens the store selected by sc. The sqlite driver keeps its data
// under dir and is recovered from board.json when damaged; postgres ignores dir.
func OpenStore(ctx context.Context, dir string, sc config.StorageConfig) (storage.Store, error) {
	l := applog.WithOperation(applog.WithComponent("board"), "open_store")
	switch sc.Driver {
	case config.DriverPostgres:
		dsn, err := sc.ResolveDSN()
		if err != nil {
			return nil, err
		}
		st, err := backend.OpenPG(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return st, nil
	case config.DriverSQLite, "":
		st, recovered, err := storage.OpenOrRecover(ctx, dir)
		if err != nil {
			return nil, err
		}
		if recovered {
			l.Warn("board database was rebuilt", slog.String("board", dir))
		}
		return st, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", sc.Driver)
}
