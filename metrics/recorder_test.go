package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_RecordFetchAttempt(t *testing.T) {
	r := NewRecorder()

	r.RecordFetchAttempt(false)
	r.RecordFetchAttempt(false)
	r.RecordFetchAttempt(true)

	assert.Equal(t, float64(2), testutil.ToFloat64(r.fetchAttemptsTotal.WithLabelValues("failure")))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.fetchAttemptsTotal.WithLabelValues("success")))
}

func TestRecorder_RecordInstall(t *testing.T) {
	r := NewRecorder()

	r.RecordInstall("binary", "success", 2*time.Second)
	r.RecordInstall("binary", "reboot-required", time.Second)
	r.RecordInstall("extension", "failure", time.Second)

	assert.Equal(t, float64(1), testutil.ToFloat64(r.installTotal.WithLabelValues("binary", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.installTotal.WithLabelValues("binary", "reboot-required")))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.installTotal.WithLabelValues("extension", "failure")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.installDuration))
}

func TestRecorder_RecordServiceOperation(t *testing.T) {
	r := NewRecorder()

	r.RecordServiceOperation("stop", "absent")
	r.RecordServiceOperation("stop", "stopped")
	r.RecordServiceOperation("stop", "stopped")

	assert.Equal(t, float64(2), testutil.ToFloat64(r.serviceOperationsTotal.WithLabelValues("stop", "stopped")))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.serviceOperationsTotal.WithLabelValues("stop", "absent")))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder

	assert.NotPanics(t, func() {
		r.RecordFetchAttempt(true)
		r.RecordFetchDuration(time.Second)
		r.RecordInstall("binary", "success", time.Second)
		r.RecordServiceOperation("stop", "stopped")
		r.RecordStep("fetch", true)
	})
	assert.Nil(t, r.Registry())
	assert.NoError(t, r.WriteTextfile(filepath.Join(t.TempDir(), "never.prom")))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.RecordFetchAttempt(true)
	r.RecordFetchDuration(3 * time.Second)
	r.RecordStep("install-binary", true)

	path := filepath.Join(t.TempDir(), "provision.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.True(t, strings.Contains(out, `provision_fetch_attempts_total{result="success"} 1`), out)
	assert.Contains(t, out, "provision_fetch_duration_seconds_count 1")
	assert.Contains(t, out, `provision_plan_steps_total{action="install-binary",success="true"} 1`)
}
