package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecordsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
- name: apollo
  owner:
    name: nasa
    tags: [{kind: lunar}]
`), 0o600))

	records, err := parseRecordsFile(path)
	require.NoError(t, err)
	require.Len(t, records, 1)

	owner, ok := records[0]["owner"].(map[string]interface{})
	require.True(t, ok, "nested yaml maps should be keyed by strings")
	assert.Equal(t, "nasa", owner["name"])

	tags, ok := owner["tags"].([]interface{})
	require.True(t, ok)
	assert.Equal(t, map[string]interface{}{"kind": "lunar"}, tags[0])
}

func TestRecordRows(t *testing.T) {
	rows := recordRows([]map[string]interface{}{
		{"urn": "urn:apollo", "year": 1969.0, "owner": map[string]interface{}{"name": "nasa"}},
		{"urn": "urn:rosetta", "name": "Rosetta"},
	})

	assert.Equal(t, [][]string{
		{"name", "urn", "year"},
		{"", "urn:apollo", "1969"},
		{"Rosetta", "urn:rosetta", ""},
	}, rows)
}
