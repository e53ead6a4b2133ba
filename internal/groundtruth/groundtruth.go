// Package groundtruth reads the per-vehicle reference speed table that ships
// alongside each dataset video.
package groundtruth

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// FileName is the fixed name of the reference table within a video directory.
const FileName = "cars.csv"

// Record is one row of the reference table: a vehicle observed between Start
// and End (seconds, video-relative) travelling at Speed.
type Record struct {
	Start float64
	End   float64
	Speed float64
}

// PathForVideo returns the reference table path for a video directory.
func PathForVideo(videoPath string) string {
	return filepath.Join(videoPath, FileName)
}

// Load reads the reference table colocated with the given video directory.
func Load(videoPath string) ([]Record, error) {
	return ReadFile(PathForVideo(videoPath))
}

// ReadFile reads a reference table CSV. Required columns: start, end, speed.
// Column order is taken from the header row; extra columns are ignored.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: empty ground truth file", path)
	}

	cols := map[string]int{}
	for i, name := range rows[0] {
		cols[name] = i
	}
	for _, required := range []string{"start", "end", "speed"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%s: missing required column %q", path, required)
		}
	}

	records := make([]Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := parseRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRow(row []string, cols map[string]int) (Record, error) {
	var rec Record
	fields := []struct {
		name string
		dst  *float64
	}{
		{"start", &rec.Start},
		{"end", &rec.End},
		{"speed", &rec.Speed},
	}
	for _, f := range fields {
		idx := cols[f.name]
		if idx >= len(row) {
			return Record{}, fmt.Errorf("missing %s value", f.name)
		}
		v, err := strconv.ParseFloat(row[idx], 64)
		if err != nil {
			return Record{}, fmt.Errorf("parse %s: %w", f.name, err)
		}
		*f.dst = v
	}
	return rec, nil
}
