package evallog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/estimation.report/internal/monitoring"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	os.Exit(m.Run())
}

func writeLog(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.log")
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		payload string
		ok      bool
	}{
		{"record line", `INFO:root:{"frameId": 100}`, `{"frameId": 100}`, true},
		{"video header", "Video: /data/videoA/", "", false},
		{"other log level", `DEBUG:root:{"frameId": 100}`, "", false},
		{"marker without JSON", "INFO:root:starting up", "", false},
		{"empty line", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, ok := ClassifyLine(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.payload, payload)
		})
	}
}

func TestDecodeRecord(t *testing.T) {
	t.Run("speed record is kept", func(t *testing.T) {
		obs, keep, err := DecodeRecord(`{"frameId": 18000, "avgSpeedTowards": 42.0}`)
		require.NoError(t, err)
		assert.True(t, keep)
		assert.Equal(t, Observation{FrameID: 18000, AvgSpeedTowards: 42.0}, obs)
	})

	t.Run("record without speed key is discarded", func(t *testing.T) {
		_, keep, err := DecodeRecord(`{"frameId": 18000, "event": "tracking_lost"}`)
		require.NoError(t, err)
		assert.False(t, keep)
	})

	t.Run("malformed payload is an error", func(t *testing.T) {
		_, _, err := DecodeRecord(`{"frameId": 18000,`)
		assert.Error(t, err)
	})

	t.Run("speed without frame id is an error", func(t *testing.T) {
		_, _, err := DecodeRecord(`{"avgSpeedTowards": 42.0}`)
		assert.Error(t, err)
	})
}

func TestVideoID(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/data/videoA/", "videoA"},
		{"/data/videoA", "videoA"},
		{"videoA", "videoA"},
		{"", UnknownVideoID},
		{"/", UnknownVideoID},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, VideoID(tt.path), "VideoID(%q)", tt.path)
	}
}

func TestDeriveRunID(t *testing.T) {
	assert.Equal(t, "videoA_depth_0", DeriveRunID("/data/videoA/", 0))
	assert.Equal(t, "-1_depth_0", DeriveRunID("", 0))
}

func TestLoad(t *testing.T) {
	t.Run("parses header and speed records", func(t *testing.T) {
		path := writeLog(t,
			"Video: /data/videoA/",
			`INFO:root:{"frameId": 100, "avgSpeedTowards": 40.5}`,
			"INFO:root:tracker initialised",
			`INFO:root:{"frameId": 150, "event": "tracking_lost"}`,
			`INFO:root:{"frameId": 200, "avgSpeedTowards": 41.0}`,
		)

		result, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "/data/videoA/", result.VideoPath)
		assert.Equal(t, "videoA_depth_0", result.RunID)
		want := []Observation{
			{FrameID: 100, AvgSpeedTowards: 40.5},
			{FrameID: 200, AvgSpeedTowards: 41.0},
		}
		if diff := cmp.Diff(want, result.Observations); diff != "" {
			t.Errorf("observations mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("kept count matches lines carrying the speed key", func(t *testing.T) {
		path := writeLog(t,
			"Video: /data/videoA/",
			`INFO:root:{"frameId": 1, "avgSpeedTowards": 10.0}`,
			`INFO:root:{"frameId": 2}`,
			`INFO:root:{"frameId": 3, "avgSpeedTowards": 11.0}`,
			`INFO:root:{"frameId": 4}`,
			`INFO:root:{"frameId": 5, "avgSpeedTowards": 12.0}`,
		)
		result, err := Load(path)
		require.NoError(t, err)
		assert.Len(t, result.Observations, 3)
	})

	t.Run("missing header yields sentinel run id", func(t *testing.T) {
		path := writeLog(t,
			"starting estimation",
			`INFO:root:{"frameId": 100, "avgSpeedTowards": 40.5}`,
		)
		result, err := Load(path)
		require.NoError(t, err)
		assert.Empty(t, result.VideoPath)
		assert.Equal(t, "-1_depth_0", result.RunID)
	})

	t.Run("header is only read on the first line", func(t *testing.T) {
		path := writeLog(t,
			"starting estimation",
			"Video: /data/videoB/",
		)
		result, err := Load(path)
		require.NoError(t, err)
		assert.Empty(t, result.VideoPath)
	})

	t.Run("malformed candidate line aborts the load", func(t *testing.T) {
		path := writeLog(t,
			"Video: /data/videoA/",
			`INFO:root:{"frameId": 100, "avgSpeedTowards"`,
		)
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "malformed record")
	})

	t.Run("missing file surfaces the open error", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.log"))
		assert.True(t, os.IsNotExist(err))
	})
}
