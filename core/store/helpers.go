package store

import (
	"database/sql"
	"encoding/json"
	"sort"
	"strings"
	"time"
)

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func nullableString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.UTC()
}

func headersToJSON(headers map[string]string) *string {
	if len(headers) == 0 {
		return nil
	}
	raw, err := json.Marshal(headers)
	if err != nil {
		return nil
	}
	val := string(raw)
	return &val
}

func headersFromJSON(raw sql.NullString) map[string]string {
	if !raw.Valid || strings.TrimSpace(raw.String) == "" {
		return nil
	}
	var headers map[string]string
	if err := json.Unmarshal([]byte(raw.String), &headers); err != nil {
		return nil
	}
	return headers
}

func recipientsToJSON(recipients []string) string {
	cleaned := make([]string, 0, len(recipients))
	seen := map[string]struct{}{}
	for _, r := range recipients {
		addr := strings.TrimSpace(r)
		if addr == "" {
			continue
		}
		key := strings.ToLower(addr)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, addr)
	}
	sort.Strings(cleaned)
	raw, _ := json.Marshal(cleaned)
	return string(raw)
}

func recipientsFromJSON(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var recipients []string
	if err := json.Unmarshal([]byte(raw), &recipients); err != nil {
		return nil
	}
	return recipients
}
