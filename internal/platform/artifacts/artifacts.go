package artifacts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/studyplan-backend/internal/platform/logger"
)

const DefaultDir = "artifacts"

// Store writes diagnostic side files under a single directory.
type Store struct {
	dir string
	log *logger.Logger
	now func() time.Time
}

func New(dir string, log *logger.Logger) *Store {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = DefaultDir
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Store{dir: dir, log: log.With("service", "ArtifactStore"), now: time.Now}
}

// WriteDebug stores data under a unique name derived from stem and suffix, so
// concurrent failures never overwrite each other. It returns the file path.
func (s *Store) WriteDebug(stem, suffix string, data []byte) (string, error) {
	if suffix != "" && !strings.HasPrefix(suffix, ".") {
		suffix = "." + suffix
	}
	name := fmt.Sprintf("%s-%s-%s%s", stem, s.now().UTC().Format("20060102T150405"), uuid.NewString()[:8], suffix)
	return s.Save(name, data)
}

// Save writes data to dir/name, replacing any previous file of that name.
func (s *Store) Save(name string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir artifacts dir: %w", err)
	}
	path := filepath.Join(s.dir, filepath.Base(name))
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("rename artifact: %w", err)
	}
	s.log.Info("artifact written", "path", path, "bytes", len(data))
	return path, nil
}
