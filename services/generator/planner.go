package generator

import "strings"

// batchGroup is a set of independent-remote fields served by one provider call
type batchGroup struct {
	key    string
	fields []string
}

// plan is the classified work for one request
type plan struct {
	rows     int
	local    []plannedField
	groups   []batchGroup
	coherent []plannedField
	order    []string
}

func buildPlan(rows int, fields []plannedField) *plan {
	p := &plan{rows: rows}
	groupIdx := make(map[string]int)
	seen := make(map[string]bool)

	for _, f := range fields {
		if !seen[f.name] {
			seen[f.name] = true
			p.order = append(p.order, f.name)
		}

		switch c := f.class.(type) {
		case localClass:
			p.local = append(p.local, f)
		case independentClass:
			idx, ok := groupIdx[c.groupKey]
			if !ok {
				idx = len(p.groups)
				groupIdx[c.groupKey] = idx
				p.groups = append(p.groups, batchGroup{key: c.groupKey})
			}
			p.groups[idx].fields = append(p.groups[idx].fields, f.name)
		case coherentClass:
			p.coherent = append(p.coherent, f)
		}
	}
	return p
}

// needed is how many items the group's single call asks for
func (g batchGroup) needed(rows int) int {
	return len(g.fields) * rows
}

// splitItems turns a newline separated response into trimmed, non-empty items
func splitItems(text string) []string {
	lines := strings.Split(text, "\n")
	items := make([]string, 0, len(lines))
	for _, line := range lines {
		if item := strings.TrimSpace(line); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// partition gives chunk i the items [i*rows, (i+1)*rows). Missing items are
// empty strings and surplus items are dropped.
func partition(items []string, k, rows int) [][]any {
	out := make([][]any, k)
	for i := 0; i < k; i++ {
		chunk := make([]any, rows)
		for j := 0; j < rows; j++ {
			idx := i*rows + j
			if idx < len(items) {
				chunk[j] = items[idx]
			} else {
				chunk[j] = ""
			}
		}
		out[i] = chunk
	}
	return out
}
