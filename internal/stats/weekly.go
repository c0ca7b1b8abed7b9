// Package stats builds the daily and weekly reports.
package stats

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Row is one log row returned by the web app's weekly endpoint.
type Row struct {
	Timestamp        string   `json:"timestamp"`
	Tag              string   `json:"tag"`
	Domain           string   `json:"domain"`
	Drifted          flexBool `json:"drifted"`
	Reactive         flexBool `json:"reactive"`
	MinutesSinceLast flexInt  `json:"minutesSinceLast"`
}

// flexBool accepts JSON booleans and sheet strings such as "TRUE".
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		*b = flexBool(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*b = false
		return nil
	}
	*b = flexBool(strings.EqualFold(strings.TrimSpace(s), "true"))
	return nil
}

// flexInt accepts numbers and numeric strings; anything else, including
// "N/A", is 0.
type flexInt int

func (n *flexInt) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = flexInt(int(f))
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			*n = flexInt(v)
			return nil
		}
	}
	*n = 0
	return nil
}

// ParseWeekly decodes the weekly payload. The web app may send the rows as an
// array or as a string holding the array. Anything else yields no rows.
func ParseWeekly(raw json.RawMessage) []Row {
	if len(raw) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		raw = json.RawMessage(s)
	}
	var rows []Row
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil
	}
	return rows
}

// Filter keeps rows whose timestamp falls within [start, end]. Rows with an
// unreadable timestamp are dropped.
func Filter(rows []Row, start, end time.Time) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		ts, err := time.Parse(time.RFC3339, r.Timestamp)
		if err != nil {
			continue
		}
		if ts.Before(start) || ts.After(end) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Bucket is one group of an aggregation.
type Bucket struct {
	Name       string
	Count      int
	Percentage int
}

// Aggregate counts rows by key, largest first. Empty keys are grouped as
// "Uncategorized".
func Aggregate(rows []Row, key func(Row) string) []Bucket {
	counts := make(map[string]int)
	for _, r := range rows {
		k := key(r)
		if k == "" {
			k = "Uncategorized"
		}
		counts[k]++
	}

	out := make([]Bucket, 0, len(counts))
	for name, c := range counts {
		out = append(out, Bucket{Name: name, Count: c, Percentage: percent(c, len(rows))})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

type Summary struct {
	TotalLogs       int
	ReactiveCount   int
	ReactivePercent int
	DriftedCount    int
	AvgGapMin       int
	ByTag           []Bucket
	ByDomain        []Bucket
	ReactiveByTag   []Bucket
	DriftedByDomain []Bucket
}

func Summarize(rows []Row) Summary {
	var (
		reactive, drifted []Row
		totalGap          int
	)
	for _, r := range rows {
		if r.Reactive {
			reactive = append(reactive, r)
		}
		if r.Drifted {
			drifted = append(drifted, r)
		}
		totalGap += int(r.MinutesSinceLast)
	}

	s := Summary{
		TotalLogs:       len(rows),
		ReactiveCount:   len(reactive),
		ReactivePercent: percent(len(reactive), len(rows)),
		DriftedCount:    len(drifted),
		ByTag:           Aggregate(rows, byTag),
		ByDomain:        Aggregate(rows, byDomain),
		ReactiveByTag:   Aggregate(reactive, byTag),
		DriftedByDomain: Aggregate(drifted, byDomain),
	}
	if len(rows) > 0 {
		s.AvgGapMin = int(math.Round(float64(totalGap) / float64(len(rows))))
	}
	return s
}

func byTag(r Row) string    { return r.Tag }
func byDomain(r Row) string { return r.Domain }

func percent(n, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(total) * 100))
}
