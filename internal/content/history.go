// ABOUTME: Reads the acquisition layer's content history (a JSON array of records)
// ABOUTME: Missing file means empty history; malformed elements are skipped, not fatal

package content

import (
	"encoding/json"
	"fmt"
	"os"
)

// ReadHistory loads every record from the JSON array at path.
// A missing file yields no records and no error. A file that is not a JSON
// array yields no records and an error the caller is expected to log and
// otherwise ignore. Individual elements that fail to decode are skipped.
func ReadHistory(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading content history: %w", err)
	}
	return DecodeHistory(data)
}

// DecodeHistory decodes a JSON array of records, skipping malformed elements.
func DecodeHistory(data []byte) ([]Record, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("parsing content history: %w", err)
	}

	records := make([]Record, 0, len(raws))
	for _, raw := range raws {
		var r Record
		if err := json.Unmarshal(raw, &r); err != nil {
			continue
		}
		records = append(records, r)
	}
	return records, nil
}
