package storage

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// contentTypeFor picks a content type from the staged file's extension.
func contentTypeFor(localPath string) string {
	switch filepath.Ext(localPath) {
	case ".json":
		return "application/json"
	case ".html":
		return "text/html"
	default:
		return "application/octet-stream"
	}
}

// removeQuietly deletes a local staging copy. Failures are logged, never returned.
func removeQuietly(log *zap.Logger, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn("failed to remove local file", zap.String("path", path), zap.Error(err))
	}
}
