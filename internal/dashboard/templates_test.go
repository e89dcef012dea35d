package dashboard

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTemplates(t *testing.T) {
	tpls := DefaultTemplates()
	require.Len(t, tpls, 3)
	assert.Equal(t, "Campaign 1", tpls[0].Name)
	assert.Equal(t, "2025-11-20", tpls[0].DisplayDate())
	assert.Equal(t, "12,500", tpls[2].DisplayOpened())
}

func TestLoadTemplates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
templates:
  - name: Monsoon Alerts
    type: Conditional
    status: Active
    recipients: "4,200"
    date: "2025-07-01"
    opened: "3,100"
`), 0o644))

	tpls, err := LoadTemplates(path)
	require.NoError(t, err)
	require.Len(t, tpls, 1)
	assert.Equal(t, "2025-07-01", tpls[0].DisplayDate())
	assert.Equal(t, "3,100", tpls[0].DisplayOpened())

	tpls, err = LoadTemplates("")
	require.NoError(t, err)
	assert.Len(t, tpls, 3)
}

func TestLoadTemplatesRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte("templates:\n  - name: X\n    colour: red\n"), 0o644))
	_, err := LoadTemplates(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("templates:\n  - status: Active\n"), 0o644))
	_, err = LoadTemplates(path)
	assert.Error(t, err)
}
