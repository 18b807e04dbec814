// internal/storage/export.go
package storage

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustline/arena/pkg/core"
)

// ExportVersion is bumped whenever the export layout changes.
const ExportVersion = 1

// MatchExport is the root JSON structure of an exported match
type MatchExport struct {
	Version      int                  `json:"version"`
	Match        core.MatchRecord     `json:"match"`
	EndedAt      time.Time            `json:"endedAt"`
	DurationSecs float64              `json:"durationSecs"`
	Kills        []core.KillRecord    `json:"kills"`
	Loadouts     []core.LoadoutRecord `json:"loadouts"`
	Presence     []PresenceJSON       `json:"presence"`
}

// PresenceJSON is one sample in an export, flattened for the web viewer
type PresenceJSON struct {
	Time     time.Time             `json:"time"`
	Snapshot core.PresenceSnapshot `json:"snapshot"`
}

// BuildExport assembles the export of one match. Loadouts are limited to the
// players that appear in the presence samples or kills.
func BuildExport(m core.MatchRecord, endedAt time.Time, kills []core.KillRecord, samples []core.PresenceSample, loadouts []core.LoadoutRecord) MatchExport {
	export := MatchExport{
		Version:  ExportVersion,
		Match:    m,
		EndedAt:  endedAt,
		Kills:    make([]core.KillRecord, 0, len(kills)),
		Loadouts: make([]core.LoadoutRecord, 0),
		Presence: make([]PresenceJSON, 0, len(samples)),
	}
	if !m.CreatedAt.IsZero() && endedAt.After(m.CreatedAt) {
		export.DurationSecs = endedAt.Sub(m.CreatedAt).Seconds()
	}

	players := make(map[string]bool)
	for _, k := range kills {
		export.Kills = append(export.Kills, k)
		players[k.AttackerName] = true
		players[k.VictimName] = true
	}
	for _, s := range samples {
		export.Presence = append(export.Presence, PresenceJSON{Time: s.Time, Snapshot: s.Snapshot})
		players[s.Snapshot.Name] = true
	}
	for _, l := range loadouts {
		if players[l.PlayerName] {
			export.Loadouts = append(export.Loadouts, l)
		}
	}
	return export
}

// Metadata summarises an export for the upload form.
func (e MatchExport) Metadata() core.UploadMetadata {
	return core.UploadMetadata{
		MatchCode:    e.Match.Code,
		MatchName:    e.Match.Name,
		Map:          e.Match.Map,
		Mode:         e.Match.Mode,
		DurationSecs: e.DurationSecs,
		KillCount:    len(e.Kills),
	}
}

// ExportFileName builds the file name of an export.
func ExportFileName(code string, start time.Time, compress bool) string {
	name := strings.NewReplacer(" ", "_", ":", "_", "/", "_", "\\", "_").Replace(code)
	name = fmt.Sprintf("%s_%s.json", name, start.UTC().Format("20060102_150405"))
	if compress {
		name += ".gz"
	}
	return name
}

// WriteExport writes export to dir, gzipped when compress is set, and
// returns the file path.
func WriteExport(dir string, compress bool, export MatchExport) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, ExportFileName(export.Match.Code, export.Match.CreatedAt, compress))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if !compress {
		if err := json.NewEncoder(f).Encode(export); err != nil {
			return "", fmt.Errorf("failed to encode export: %w", err)
		}
		return path, nil
	}

	gzWriter := gzip.NewWriter(f)
	if err := json.NewEncoder(gzWriter).Encode(export); err != nil {
		gzWriter.Close()
		return "", fmt.Errorf("failed to encode export: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return "", fmt.Errorf("failed to finish gzip stream: %w", err)
	}
	return path, nil
}

// ReadExport reads a file written by WriteExport.
func ReadExport(path string) (MatchExport, error) {
	var export MatchExport

	f, err := os.Open(path)
	if err != nil {
		return export, err
	}
	defer f.Close()

	var dec *json.Decoder
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return export, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		dec = json.NewDecoder(gz)
	} else {
		dec = json.NewDecoder(f)
	}

	if err := dec.Decode(&export); err != nil {
		return export, fmt.Errorf("failed to decode export: %w", err)
	}
	return export, nil
}
