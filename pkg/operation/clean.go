// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package operation

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/edgerewrite/pkg/status"
)

// BackupManager is the part of the file store the backup operations need.
type BackupManager interface {
	FileExists(ctx context.Context, path string) (bool, error)
	RestoreFile(ctx context.Context, path string) error
	DeleteFile(ctx context.Context, path string) error
}

// ♻️ RestoreBackups puts every <path>.bak back in place of path. Paths with
// no backup are skipped and returned separately.
func RestoreBackups(ctx context.Context, files BackupManager, paths []string) (restored, skipped []string, err error) {
	logger := zerolog.Ctx(ctx)

	for _, path := range paths {
		ok, err := files.FileExists(ctx, path+status.BackupSuffix)
		if err != nil {
			return restored, skipped, errors.Errorf("checking backup of %s: %w", path, err)
		}
		if !ok {
			skipped = append(skipped, path)
			continue
		}
		if err := files.RestoreFile(ctx, path); err != nil {
			return restored, skipped, errors.Errorf("restoring %s: %w", path, err)
		}
		logger.Debug().Str("file", path).Msg("restored backup")
		restored = append(restored, path)
	}
	return restored, skipped, nil
}

// 🧹 CleanBackups deletes the <path>.bak left by earlier runs and returns
// the backups it removed.
func CleanBackups(ctx context.Context, files BackupManager, paths []string) ([]string, error) {
	logger := zerolog.Ctx(ctx)

	var removed []string
	for _, path := range paths {
		backup := path + status.BackupSuffix
		ok, err := files.FileExists(ctx, backup)
		if err != nil {
			return removed, errors.Errorf("checking backup of %s: %w", path, err)
		}
		if !ok {
			continue
		}
		if err := files.DeleteFile(ctx, backup); err != nil {
			return removed, errors.Errorf("deleting %s: %w", backup, err)
		}
		logger.Debug().Str("file", backup).Msg("removed backup")
		removed = append(removed, backup)
	}
	return removed, nil
}
