package run

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// RunFingerprint identifies the parameters of a run; two runs over the same
// workbook with equal fingerprints produce the same result.
type RunFingerprint struct {
	InputPath   string   `json:"input_path"`
	GroupBy     string   `json:"group_by"`
	Stats       []string `json:"stats"`
	Columns     []string `json:"columns,omitempty"`
	TimeFrom    *int64   `json:"time_from,omitempty"`
	TimeTo      *int64   `json:"time_to,omitempty"`
	MatchMode   string   `json:"match_mode"`
	Fingerprint string   `json:"fingerprint"` // Hash of all above
}

// NewRunFingerprint creates a fingerprint from the run parameters
func NewRunFingerprint(inputPath, groupBy string, stats, columns []string, timeFrom, timeTo *int64, matchMode string) RunFingerprint {
	return RunFingerprint{
		InputPath:   inputPath,
		GroupBy:     groupBy,
		Stats:       stats,
		Columns:     columns,
		TimeFrom:    timeFrom,
		TimeTo:      timeTo,
		MatchMode:   matchMode,
		Fingerprint: computeRunFingerprint(inputPath, groupBy, stats, columns, timeFrom, timeTo, matchMode),
	}
}

// computeRunFingerprint generates deterministic hash from all run parameters
func computeRunFingerprint(inputPath, groupBy string, stats, columns []string, timeFrom, timeTo *int64, matchMode string) string {
	data := fmt.Sprintf("input:%s|group_by:%s|stats:%s|columns:%s|from:%s|to:%s|match:%s",
		inputPath, groupBy, strings.Join(stats, ","), strings.Join(columns, ","),
		bound(timeFrom), bound(timeTo), matchMode)

	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

func bound(ms *int64) string {
	if ms == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *ms)
}
