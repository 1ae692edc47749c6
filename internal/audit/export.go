package audit

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strconv"
	"time"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/shared"
)

var csvHeader = []string{"id", "at", "user_id", "username", "ip", "entity_type", "entity_id", "action", "before", "after"}

// WriteCSV encodes entries as CSV with a header row. Snapshots are embedded
// as JSON text.
func WriteCSV(rows []shared.AuditLog) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, row := range rows {
		userID := ""
		if row.UserID != nil {
			userID = strconv.FormatInt(*row.UserID, 10)
		}
		before, err := snapshotText(row.Before)
		if err != nil {
			return nil, err
		}
		after, err := snapshotText(row.After)
		if err != nil {
			return nil, err
		}
		record := []string{
			strconv.FormatInt(row.ID, 10),
			row.At.UTC().Format(time.RFC3339),
			userID,
			row.Username,
			row.IP,
			row.EntityType,
			strconv.FormatInt(row.EntityID, 10),
			string(row.Action),
			before,
			after,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func snapshotText(m map[string]any) (string, error) {
	if len(m) == 0 {
		return "", nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
