package processing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadVideoIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "video_ids.txt")
	content := "abc123\n\n  def456  \n\nghi789\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	ids, err := ReadVideoIDs(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"abc123", "def456", "ghi789"}, ids)
}

func TestReadVideoIDsMissingFile(t *testing.T) {
	_, err := ReadVideoIDs(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}

func TestLabelCountry(t *testing.T) {
	tests := []struct {
		country string
		want    string
	}{
		{country: "IN", want: "indian"},
		{country: "in", want: "indian"},
		{country: "US", want: "foreign"},
		{country: "GB", want: "foreign"},
		{country: "", want: "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, labelCountry(tt.country), "country %q", tt.country)
	}
}
