// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"time"
)

// UploadFilename builds a collision-resistant on-disk name for an uploaded
// file: the slugified base name, an upload timestamp in milliseconds, a
// random suffix, and the original extension lowercased.
func UploadFilename(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))

	safe := Slugify(base)
	if safe == "" {
		safe = "upload"
	}

	return fmt.Sprintf("%s-%d-%d%s", safe, time.Now().UnixMilli(), rand.IntN(1_000_000_000), ext)
}
