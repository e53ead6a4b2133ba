package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLogger(t *testing.T) {
	defer SetLogger(nil)

	var captured string
	SetLogger(func(format string, v ...interface{}) {
		captured = fmt.Sprintf(format, v...)
	})

	Logf("loaded %d observations", 42)
	if captured != "loaded 42 observations" {
		t.Errorf("captured = %q, want %q", captured, "loaded 42 observations")
	}
}

func TestSetLoggerNil(t *testing.T) {
	SetLogger(nil)
	// Must not panic.
	Logf("discarded %d records", 3)
	SetLogger(nil)
}
