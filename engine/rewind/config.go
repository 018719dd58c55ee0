package rewind

import (
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config holds the engine tunables. The zero value is not usable, start from
// DefaultConfig.
type Config struct {
	// MaxWindow is the maximum compensation window in seconds. History older
	// than now-MaxWindow is pruned every drain cycle.
	MaxWindow float64 `json:"maxWindowSeconds"`
	// EdgeSlack admits query timestamps this close outside the history window,
	// clamping to the nearest record. Roughly one simulation frame.
	EdgeSlack float64 `json:"edgeSlackSeconds"`
	// BroadphasePadding covers interpolation uncertainty when padding the
	// union bounding volume, on top of the trace radius.
	BroadphasePadding float32 `json:"broadphasePadding"`
	// NegligibleMotion is the bracket-to-bracket displacement below which
	// interpolation error is immaterial and broadphase admits the source.
	NegligibleMotion float32 `json:"negligibleMotion"`

	SnapshotQueueSize int `json:"snapshotQueueSize"`
	QueryQueueSize    int `json:"queryQueueSize"`
	DebugQueueSize    int `json:"debugQueueSize"`
}

func DefaultConfig() Config {
	return Config{
		MaxWindow:         0.5,
		EdgeSlack:         1.0 / 60.0,
		BroadphasePadding: 0.05,
		NegligibleMotion:  0.005,
		SnapshotQueueSize: 1024,
		QueryQueueSize:    256,
		DebugQueueSize:    4096,
	}
}

// LoadConfig reads a JSON config file on top of the defaults, so partial files
// only override what they mention.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "could not read rewind config %s", path)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "could not parse rewind config %s", path)
	}
	if cfg.MaxWindow <= 0 {
		return cfg, errors.Errorf("rewind config %s: maxWindowSeconds must be positive", path)
	}
	return cfg, nil
}
