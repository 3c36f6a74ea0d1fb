package configparser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "org2.cfg")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
# machine setup
model lz
rom roms/lz.rom
pack 0 packs/main.opk
pack 2 packs/data.opk
logfile run.log
`)
	config, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "LZ", config.Model)
	assert.Equal(t, "roms/lz.rom", config.ROMPath)
	assert.Equal(t, "run.log", config.LogPath)
	assert.Equal(t, "packs/main.opk", config.Packs[0])
	assert.Equal(t, "packs/data.opk", config.Packs[2])
}

func TestDefaults(t *testing.T) {
	config, err := LoadConfigFile(writeConfig(t, "# nothing\n"))
	require.NoError(t, err)
	assert.Equal(t, "XP", config.Model)
	assert.Empty(t, config.Packs)
}

func TestErrors(t *testing.T) {
	_, err := LoadConfigFile(writeConfig(t, "model\n"))
	assert.Error(t, err)

	_, err = LoadConfigFile(writeConfig(t, "pack 5 x.opk\n"))
	assert.Error(t, err)

	_, err = LoadConfigFile(writeConfig(t, "teleport on\n"))
	assert.Error(t, err)

	_, err = LoadConfigFile("/no/such/file.cfg")
	assert.Error(t, err)
}
