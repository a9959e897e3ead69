package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/battlecode/memutils/metadata"
	"github.com/vkngwrapper/battlecode/native"
	"golang.org/x/exp/slog"
)

func TestParseDefaults(t *testing.T) {
	c, err := Parse(nil)
	require.NoError(t, err)
	require.Equal(t, Default(), c)

	options, err := c.HeapOptions()
	require.NoError(t, err)
	require.Equal(t, native.CreateOptions{
		BlockSize: native.DefaultBlockSize,
		Strategy:  metadata.AllocationStrategyMinMemory,
	}, options)
}

func TestParseHeapSection(t *testing.T) {
	c, err := Parse([]byte(`
[heap]
block_size = 4096
size_limit = 65536
strategy = "min-time"
externally_synchronized = true

[log]
level = "debug"
format = "json"
`))
	require.NoError(t, err)
	require.Equal(t, slog.LevelDebug, c.Log.Level)
	require.Equal(t, FormatJSON, c.Log.Format)

	options, err := c.HeapOptions()
	require.NoError(t, err)
	require.Equal(t, native.CreateOptions{
		Flags:         native.HeapCreateExternallySynchronized,
		BlockSize:     4096,
		HeapSizeLimit: 65536,
		Strategy:      metadata.AllocationStrategyMinTime,
	}, options)

	heap, err := native.NewHeap(nil, options)
	require.NoError(t, err)
	require.NoError(t, heap.Destroy())
}

func TestParseRejectsBadValues(t *testing.T) {
	_, err := Parse([]byte(`[log]
level = "loud"`))
	require.Error(t, err)

	_, err = Parse([]byte(`[heap
block_size = 1`))
	require.Error(t, err)

	c, err := Parse([]byte(`[heap]
strategy = "fastest"`))
	require.NoError(t, err)
	_, err = c.HeapOptions()
	require.Error(t, err)

	c, err = Parse([]byte(`[log]
format = "xml"`))
	require.NoError(t, err)
	_, err = c.Logger(&bytes.Buffer{})
	require.Error(t, err)
}

func TestLoggerHonoursLevel(t *testing.T) {
	c := Default()
	c.Log.Level = slog.LevelWarn

	var out bytes.Buffer
	logger, err := c.Logger(&out)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown")
	require.NotContains(t, out.String(), "hidden")
	require.Contains(t, out.String(), "msg=shown")

	c.Log.Format = FormatJSON
	out.Reset()
	logger, err = c.Logger(&out)
	require.NoError(t, err)
	logger.Error("broken")
	require.Contains(t, out.String(), `"msg":"broken"`)
}

func TestLoadRoster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "units.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[unit]]
id = 1
team = "red"
type = "Worker"
health = 100
max_health = 100
location = { kind = "OnMap", planet = "Mars", x = 3, y = 4 }

[[unit]]
id = 2
team = "Blue"
type = "factory"
health = 250
max_health = 300
location = { kind = "InSpace" }
`), 0o644))

	roster, err := LoadRoster(path)
	require.NoError(t, err)
	require.Equal(t, []native.UnitData{
		{
			ID:        1,
			Team:      native.TeamRed,
			Type:      native.UnitTypeWorker,
			Health:    100,
			MaxHealth: 100,
			Location:  native.Location{Kind: native.LocationOnMap, Planet: native.PlanetMars, X: 3, Y: 4},
		},
		{
			ID:        2,
			Team:      native.TeamBlue,
			Type:      native.UnitTypeFactory,
			Health:    250,
			MaxHealth: 300,
			Location:  native.Location{Kind: native.LocationInSpace},
		},
	}, roster.Units)

	_, err = ParseRoster([]byte(`[[unit]]
team = "green"`))
	require.Error(t, err)

	_, err = LoadRoster(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}
