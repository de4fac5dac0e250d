package fetcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dolarcaro-service/internal/domain"

	"go.uber.org/zap"
)

// Snapshotter writes fetched page bodies to disk for offline
// inspection of layout changes. Capture never blocks the fetch path.
type Snapshotter struct {
	Dir string
	Log *zap.Logger
}

func (s *Snapshotter) Capture(store string, locale domain.Locale, body []byte) {
	if s == nil || s.Dir == "" {
		return
	}
	name := fmt.Sprintf("%s_%s_%s.html", store, strings.ToLower(string(locale)), time.Now().UTC().Format("2006-01-02_15-04-05"))
	buf := make([]byte, len(body))
	copy(buf, body)
	go func() {
		log := s.Log
		if log == nil {
			log = zap.NewNop()
		}
		if err := os.MkdirAll(s.Dir, 0o755); err != nil {
			log.Warn("snapshot.mkdir_failed", zap.Error(err))
			return
		}
		path := filepath.Join(s.Dir, name)
		if err := os.WriteFile(path, buf, 0o644); err != nil {
			log.Warn("snapshot.write_failed", zap.String("path", path), zap.Error(err))
			return
		}
		log.Debug("snapshot.saved", zap.String("path", path))
	}()
}
