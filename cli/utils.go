package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v2"
)

// parseRecordsFile reads a json or yaml file holding a list of records.
func parseRecordsFile(filePath string) ([]map[string]interface{}, error) {
	b, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var records []map[string]interface{}
	switch filepath.Ext(filePath) {
	case ".json":
		if err := json.Unmarshal(b, &records); err != nil {
			return nil, fmt.Errorf("invalid json: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &records); err != nil {
			return nil, fmt.Errorf("invalid yaml: %w", err)
		}
		for i, record := range records {
			records[i] = normalizeMap(record)
		}
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(filePath))
	}

	return records, nil
}

// normalizeMap rewrites the map[interface{}]interface{} values yaml
// produces into string keyed maps the search engine can walk.
func normalizeMap(m map[string]interface{}) map[string]interface{} {
	for k, v := range m {
		m[k] = normalizeValue(v)
	}
	return m
}

func normalizeValue(v interface{}) interface{} {
	switch v := v.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(v))
		for k, val := range v {
			m[fmt.Sprint(k)] = normalizeValue(val)
		}
		return m
	case map[string]interface{}:
		return normalizeMap(v)
	case []interface{}:
		for i, val := range v {
			v[i] = normalizeValue(val)
		}
		return v
	}
	return v
}

// recordRows renders the scalar top-level values of records as table rows,
// headed by the sorted union of their keys.
func recordRows(records []map[string]interface{}) [][]string {
	seen := map[string]bool{}
	var header []string
	for _, record := range records {
		for k, v := range record {
			if seen[k] || !isScalar(v) {
				continue
			}
			seen[k] = true
			header = append(header, k)
		}
	}
	sort.Strings(header)

	rows := [][]string{header}
	for _, record := range records {
		row := make([]string, len(header))
		for i, k := range header {
			if v, ok := record[k]; ok && v != nil && isScalar(v) {
				row[i] = fmt.Sprint(v)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func isScalar(v interface{}) bool {
	switch v.(type) {
	case map[string]interface{}, []interface{}:
		return false
	}
	return true
}

func prettyPrint(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "\t")
	return enc.Encode(data)
}
