package utils

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2024, 1, 15, 14, 30, 22, 0, time.UTC)

func TestGenerateOutputFileName(t *testing.T) {
	name := GenerateOutputFileName("{kind}_{timestamp}", ".csv", map[string]string{"kind": "positions"}, fixedTime)
	assert.Equal(t, "positions_20240115_143022.csv", name)

	name = GenerateOutputFileName("{kind}_{date}_{time}.png", ".png", map[string]string{"kind": "facet"}, fixedTime)
	assert.Equal(t, "facet_20240115_143022.png", name)

	name = GenerateOutputFileName("{uuid}", ".json", nil, fixedTime)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f-]{36}\.json$`), name)
}

func TestGenerateOutputFileNameSanitizesParams(t *testing.T) {
	name := GenerateOutputFileName("{kind}_{timestamp}", ".csv", map[string]string{"kind": "../etc"}, fixedTime)
	assert.Equal(t, ".._etc_20240115_143022.csv", name)
}

func TestOutputManagerWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	m := NewOutputManager(dir, "{kind}_{timestamp}")
	m.now = func() time.Time { return fixedTime }

	path, err := m.Write(".csv", map[string]string{"kind": "positions"}, func(w io.Writer) error {
		_, err := io.WriteString(w, "a,b\n")
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "positions_20240115_143022.csv"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))
	assert.True(t, FileExists(path))
}

func TestOutputManagerWriteFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	m := NewOutputManager(dir, "{kind}_{timestamp}")

	_, err := m.Write(".csv", map[string]string{"kind": "x"}, func(io.Writer) error {
		return errors.New("boom")
	})
	assert.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
