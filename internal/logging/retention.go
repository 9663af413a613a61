package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// logFilePattern matches the daily files written by NewFromConfig.
const logFilePattern = "segprep-*.log"

// DailyLogPath returns the log file for the day containing now.
func DailyLogPath(dir string, now time.Time) string {
	return filepath.Join(dir, "segprep-"+now.Format(time.DateOnly)+".log")
}

// CleanupOldLogs removes daily log files in dir last written more than
// retentionDays ago. The file named by keep is never removed. A retentionDays
// value of 0 disables pruning.
func CleanupOldLogs(logger *slog.Logger, dir string, retentionDays int, keep string) int {
	if retentionDays <= 0 || dir == "" {
		return 0
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	matches, err := filepath.Glob(filepath.Join(dir, logFilePattern))
	if err != nil {
		return 0
	}
	keepAbs, _ := filepath.Abs(keep)
	removed := 0
	for _, path := range matches {
		if abs, err := filepath.Abs(path); err == nil && abs == keepAbs {
			continue
		}
		info, err := os.Stat(path)
		if err != nil || info.IsDir() || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			WarnWithContext(logger, "log retention remove failed; file remains", "log_retention_failed",
				String("path", path),
				Error(err),
				String(FieldImpact, "old log file remains on disk"),
			)
			continue
		}
		removed++
		if logger != nil {
			logger.Debug("log pruned",
				String("path", path),
				String(FieldEventType, "log_pruned"),
			)
		}
	}
	return removed
}
