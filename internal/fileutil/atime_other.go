//go:build !linux

package fileutil

import (
	"io/fs"
	"time"
)

func accessTime(_ string, info fs.FileInfo) time.Time {
	return info.ModTime()
}
