package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/loopcheck/pkg/loopback"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"LOOPCHECK_DEVICE", "LOOPCHECK_NO_COLOR", "NO_COLOR", "LOOPCHECK_CI", "CI"} {
		t.Setenv(key, "")
	}
}

func TestResolve_Defaults(t *testing.T) {
	clearEnv(t)

	r, err := Resolve(CliFlags{})
	require.NoError(t, err)
	assert.Equal(t, "Dev1", r.Device)
	assert.Equal(t, "auto", r.Format)
	assert.Equal(t, "default", r.Theme)
	assert.Equal(t, loopback.DefaultSettle, r.Settle)
	assert.Equal(t, "default", r.DeviceSource)
	assert.Nil(t, r.Pairs)
}

func TestResolve_CliBeatsEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOOPCHECK_DEVICE", "Dev9")

	r, err := Resolve(CliFlags{Device: "Dev2", DeviceSet: true})
	require.NoError(t, err)
	assert.Equal(t, "Dev2", r.Device)
	assert.Equal(t, "cli", r.DeviceSource)
}

func TestResolve_EnvBeatsFile(t *testing.T) {
	clearEnv(t)
	writeLocalConfig(t, "device: DevFile\n")
	t.Setenv("LOOPCHECK_DEVICE", "DevEnv")

	r, err := Resolve(CliFlags{})
	require.NoError(t, err)
	assert.Equal(t, "DevEnv", r.Device)
	assert.Equal(t, "env", r.DeviceSource)
}

func TestResolve_FileLayer(t *testing.T) {
	clearEnv(t)
	writeLocalConfig(t, `
device: Dev3
format: json
theme: bench
settle: 5ms
pairs:
  - [0, 2]
  - [2, 0]
`)

	r, err := Resolve(CliFlags{})
	require.NoError(t, err)
	assert.Equal(t, "Dev3", r.Device)
	assert.Equal(t, "file", r.DeviceSource)
	assert.Equal(t, "json", r.Format)
	assert.Equal(t, "bench", r.Theme)
	assert.Equal(t, 5*time.Millisecond, r.Settle)
	assert.Equal(t, []loopback.PairSpec{{Source: 0, Dest: 2}, {Source: 2, Dest: 0}}, r.Pairs)
}

func TestResolve_MalformedFile(t *testing.T) {
	clearEnv(t)
	writeLocalConfig(t, "device: [not a\n")

	_, err := Resolve(CliFlags{})
	require.Error(t, err)
}

func TestResolve_InvalidSettleInFile(t *testing.T) {
	clearEnv(t)
	writeLocalConfig(t, "settle: soon\n")

	_, err := Resolve(CliFlags{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid settle")
}

func TestResolve_NoColorConvention(t *testing.T) {
	clearEnv(t)
	// NO_COLOR: any non-empty value disables color, per the convention.
	t.Setenv("NO_COLOR", "anything")

	r, err := Resolve(CliFlags{})
	require.NoError(t, err)
	assert.True(t, r.NoColor)
}

func TestResolve_CIImpliesNoColor(t *testing.T) {
	clearEnv(t)

	r, err := Resolve(CliFlags{CI: true, CISet: true})
	require.NoError(t, err)
	assert.True(t, r.CI)
	assert.True(t, r.NoColor)
}

func TestResolve_RejectsUnknownFormat(t *testing.T) {
	clearEnv(t)

	_, err := Resolve(CliFlags{Format: "xml", FormatSet: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestResolve_RejectsNegativeSettle(t *testing.T) {
	clearEnv(t)

	_, err := Resolve(CliFlags{Settle: -time.Millisecond, SettleSet: true})
	require.Error(t, err)
}

func TestResolve_RejectsBadPairs(t *testing.T) {
	clearEnv(t)

	writeLocalConfig(t, "pairs:\n  - [0, 4]\n")
	_, err := Resolve(CliFlags{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside 0-3")
}

func TestResolve_RejectsSelfLoopedPair(t *testing.T) {
	clearEnv(t)

	writeLocalConfig(t, "pairs:\n  - [1, 1]\n")
	_, err := Resolve(CliFlags{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "onto itself")
}

func TestLoadFile_Missing(t *testing.T) {
	fc, err := loadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Nil(t, fc)
}

// writeLocalConfig drops a .loopcheck.yaml into a temp working directory so
// configPath finds it first.
func writeLocalConfig(t *testing.T, content string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".loopcheck.yaml"), []byte(content), 0o644))
	t.Chdir(dir)
}
