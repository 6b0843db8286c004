package logging

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const cleanerInterval = time.Minute

var cleanerCancel context.CancelFunc

// configureCleanerLocked starts (or stops) the background goroutine that
// keeps the logs directory under maxTotalSizeMB. The active log file is never
// removed. Caller holds writerMu.
func configureCleanerLocked(dir string, maxTotalSizeMB int, activePath string) {
	stopCleanerLocked()
	if maxTotalSizeMB <= 0 || strings.TrimSpace(dir) == "" {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	cleanerCancel = cancel
	maxBytes := int64(maxTotalSizeMB) * 1024 * 1024
	go runCleaner(ctx, filepath.Clean(dir), maxBytes, filepath.Clean(activePath))
}

func stopCleanerLocked() {
	if cleanerCancel != nil {
		cleanerCancel()
		cleanerCancel = nil
	}
}

func runCleaner(ctx context.Context, dir string, maxBytes int64, activePath string) {
	ticker := time.NewTicker(cleanerInterval)
	defer ticker.Stop()

	for {
		if deleted, err := pruneLogDir(dir, maxBytes, activePath); err != nil {
			log.WithError(err).Warn("log directory cleanup failed")
		} else if deleted > 0 {
			log.Debugf("removed %d rotated log file(s) over the size cap", deleted)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// pruneLogDir deletes the oldest rotated log files until the directory total
// drops under maxBytes.
func pruneLogDir(dir string, maxBytes int64, activePath string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	type logFile struct {
		path    string
		size    int64
		modTime time.Time
	}
	var files []logFile
	var total int64
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".log") {
			continue
		}
		info, errInfo := entry.Info()
		if errInfo != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, logFile{
			path:    filepath.Join(dir, entry.Name()),
			size:    info.Size(),
			modTime: info.ModTime(),
		})
		total += info.Size()
	}
	if total <= maxBytes {
		return 0, nil
	}

	sort.Slice(files, func(i, j int) bool { return files[i].modTime.Before(files[j].modTime) })

	deleted := 0
	for _, file := range files {
		if total <= maxBytes {
			break
		}
		if filepath.Clean(file.path) == activePath {
			continue
		}
		if errRemove := os.Remove(file.path); errRemove != nil {
			log.WithError(errRemove).Warnf("failed to remove old log file %s", filepath.Base(file.path))
			continue
		}
		total -= file.size
		deleted++
	}
	return deleted, nil
}
