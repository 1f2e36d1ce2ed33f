package prefetch

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"

	"metricsdash/internal/cache"
	"metricsdash/internal/models"
)

type snapshot struct {
	SavedAt time.Time        `json:"savedAt"`
	Series  []*models.Series `json:"series"`
}

// SnapshotStore keeps the last warmed series on disk so a restarted daemon
// does not have to hit rate-limited upstreams before its first page view.
type SnapshotStore struct {
	compressor cache.CompressorInterface
}

func NewSnapshotStore(compressor cache.CompressorInterface) *SnapshotStore {
	return &SnapshotStore{compressor: compressor}
}

// SaveToFile writes through a temp file and renames it into place.
func (f *SnapshotStore) SaveToFile(fileName string, series []*models.Series, savedAt time.Time) error {
	jsonData, err := json.Marshal(snapshot{SavedAt: savedAt, Series: series})
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fileName), 0o755); err != nil {
		return err
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

// LoadFromFile returns nothing when no snapshot has been written yet.
func (f *SnapshotStore) LoadFromFile(fileName string) ([]*models.Series, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	decompressed, err := f.compressor.Decompress(data)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", fileName, err)
	}

	var snap snapshot
	if err := json.Unmarshal(decompressed, &snap); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", fileName, err)
	}
	return snap.Series, nil
}
