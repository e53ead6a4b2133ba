// Package evallog loads the line-oriented log files emitted by the speed
// estimation pipeline and extracts per-frame speed observations from them.
package evallog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/banshee-data/estimation.report/internal/monitoring"
)

// RecordMarker prefixes every structured record line in an estimation log.
const RecordMarker = "INFO:root:"

// UnknownVideoID is the sentinel run identifier segment used when the log
// carries no video path header.
const UnknownVideoID = "-1"

// videoPattern matches the video path header on the first log line.
var videoPattern = regexp.MustCompile(`Video: (.*)`)

// Observation is one per-frame speed record extracted from a log.
type Observation struct {
	FrameID         int64   `json:"frameId"`
	AvgSpeedTowards float64 `json:"avgSpeedTowards"`
}

// RunResult is the outcome of loading one estimation log file.
type RunResult struct {
	// RunID identifies the run: "<video_id>_depth_<n>".
	RunID string
	// VideoPath is the source video directory from the log header, or empty
	// when the header was absent.
	VideoPath string
	// Observations preserve log line order, which is frame capture order.
	Observations []Observation
}

// logRecord mirrors the JSON payload of a record line. Pointer fields
// distinguish absent keys from zero values: the estimation pipeline
// multiplexes several event types into the same log and only records
// carrying avgSpeedTowards are speed observations.
type logRecord struct {
	FrameID         *int64   `json:"frameId"`
	AvgSpeedTowards *float64 `json:"avgSpeedTowards"`
}

// ClassifyLine reports whether a log line is a candidate record line and, if
// so, returns its JSON payload with the record marker stripped.
func ClassifyLine(line string) (payload string, ok bool) {
	if !strings.HasPrefix(line, RecordMarker+"{") {
		return "", false
	}
	return line[len(RecordMarker):], true
}

// DecodeRecord parses a candidate payload into an Observation. Records
// without a speed-towards value are not observations; they are reported with
// keep=false and no error. A structurally malformed payload is an error.
func DecodeRecord(payload string) (obs Observation, keep bool, err error) {
	var rec logRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return Observation{}, false, fmt.Errorf("malformed record: %w", err)
	}
	if rec.AvgSpeedTowards == nil {
		return Observation{}, false, nil
	}
	if rec.FrameID == nil {
		return Observation{}, false, fmt.Errorf("record has avgSpeedTowards but no frameId")
	}
	return Observation{FrameID: *rec.FrameID, AvgSpeedTowards: *rec.AvgSpeedTowards}, true, nil
}

// VideoID derives the video identifier from a video path: the last path
// segment with any trailing slash stripped, or UnknownVideoID for an empty
// path.
func VideoID(videoPath string) string {
	trimmed := strings.Trim(videoPath, "/")
	if trimmed == "" {
		return UnknownVideoID
	}
	segments := strings.Split(trimmed, "/")
	return segments[len(segments)-1]
}

// DeriveRunID builds the run identifier for a video path and depth tag.
func DeriveRunID(videoPath string, depth int) string {
	return fmt.Sprintf("%s_depth_%d", VideoID(videoPath), depth)
}

// Load parses one estimation log file into a RunResult. Only the first line
// is inspected for the video path header; a missing header is not an error.
// A candidate record line that fails to decode aborts the whole load.
func Load(path string) (*RunResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	result := &RunResult{}
	discarded := 0

	scan := bufio.NewScanner(f)
	scan.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scan.Scan() {
		lineNo++
		line := scan.Text()

		if lineNo == 1 {
			if m := videoPattern.FindStringSubmatch(line); m != nil {
				result.VideoPath = m[1]
			}
			monitoring.Logf("found cars path from log: %q", result.VideoPath)
		}

		payload, ok := ClassifyLine(line)
		if !ok {
			continue
		}

		obs, keep, err := DecodeRecord(payload)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		if !keep {
			discarded++
			continue
		}
		result.Observations = append(result.Observations, obs)
	}
	if err := scan.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	result.RunID = DeriveRunID(result.VideoPath, 0)
	if discarded > 0 {
		monitoring.Logf("%s: discarded %d records without avgSpeedTowards", path, discarded)
	}

	return result, nil
}
