package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeUniverse(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "universe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadUniverse(t *testing.T) {
	path := writeUniverse(t, `
instruments:
  - symbol: SBER
    broker_id: BBG004730N88
    lot_size: 10
  - symbol: GAZP
    broker_id: BBG004730RP0
    lot_size: 10
`)
	instruments, err := LoadUniverse(path)
	require.NoError(t, err)
	require.Len(t, instruments, 2)
	assert.Equal(t, "SBER", instruments[0].Symbol)
	assert.Equal(t, "BBG004730N88", instruments[0].BrokerID)
	assert.Equal(t, 10, instruments[0].LotSize)
}

func TestLoadUniverse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "empty instrument list",
			content: "instruments: []\n",
		},
		{
			name: "missing broker id",
			content: `
instruments:
  - symbol: SBER
    lot_size: 10
`,
		},
		{
			name: "non-positive lot size",
			content: `
instruments:
  - symbol: SBER
    broker_id: BBG004730N88
    lot_size: 0
`,
		},
		{
			name: "duplicate symbol",
			content: `
instruments:
  - symbol: SBER
    broker_id: BBG004730N88
    lot_size: 10
  - symbol: SBER
    broker_id: BBG004730N88
    lot_size: 10
`,
		},
		{
			name:    "malformed yaml",
			content: "instruments: [oops",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadUniverse(writeUniverse(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadUniverse_MissingFile(t *testing.T) {
	_, err := LoadUniverse(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
