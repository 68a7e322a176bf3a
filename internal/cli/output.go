package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/mr1hm/go-cyber-patrol/internal/models"
)

func checkOutput(format string) error {
	if format != outputTable && format != outputJSON {
		return fmt.Errorf("unknown output format: %q", format)
	}
	return nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// headline is the one-line text a table row shows for a record.
func headline(r *models.Record) string {
	switch r.Kind {
	case models.KindAlert:
		return r.Message
	case models.KindHotel:
		return r.Domain
	default:
		return r.Snippet
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
