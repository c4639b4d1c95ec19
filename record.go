package main

// buildRecord turns a normalized diagnostic object into a DiagnosticRecord
// tree. The walk uses an explicit work stack; span-tree depth is data
// controlled and must not be able to blow the goroutine stack.
func buildRecord(m map[string]any) *DiagnosticRecord {
	if m == nil {
		return nil
	}
	root := newRecord(m)

	type frame struct {
		src map[string]any
		rec *DiagnosticRecord
	}
	stack := []frame{{m, root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, c := range asSlice(f.src["children"]) {
			cm := asMap(c)
			if cm == nil {
				continue
			}
			child := newRecord(cm)
			f.rec.Children = append(f.rec.Children, child)
			stack = append(stack, frame{cm, child})
		}
	}
	return root
}

func newRecord(m map[string]any) *DiagnosticRecord {
	return &DiagnosticRecord{
		Name:       getStringFromMap(m, "name"),
		StartTime:  parseTimestampFromMap(m, "startTime"),
		DurationMs: getFloat64FromMap(m, "durationMs"),
		Calls:      extractCallSummary(m),
		Data:       asMap(m["data"]),
		Payload:    m,
	}
}

// extractCallSummary flattens the per-record call summary (direct and
// gateway call counts keyed by status) into one counter map.
func extractCallSummary(m map[string]any) map[string]int64 {
	sm := asMap(m["summary"])
	if sm == nil {
		return nil
	}
	out := make(map[string]int64)
	for k, v := range sm {
		switch t := v.(type) {
		case float64:
			out[k] = int64(t)
		case map[string]any:
			for ck, cv := range t {
				if f, ok := cv.(float64); ok {
					out[k+" "+ck] = int64(f)
				}
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// mergeCallCounts sums the per-record call summaries across a run.
func mergeCallCounts(records []*DiagnosticRecord) map[string]int64 {
	var out map[string]int64
	for _, r := range records {
		for k, v := range r.Calls {
			if out == nil {
				out = make(map[string]int64)
			}
			out[k] += v
		}
	}
	return out
}

// flattenRecord returns the record and every descendant span in pre-order,
// parent before children, using an explicit stack instead of recursion. A
// missing or empty child list is fine.
func flattenRecord(root *DiagnosticRecord) []*DiagnosticRecord {
	if root == nil {
		return nil
	}
	var flat []*DiagnosticRecord
	stack := []*DiagnosticRecord{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		flat = append(flat, n)

		// Push children in reverse so the first child pops first.
		for i := len(n.Children) - 1; i >= 0; i-- {
			if n.Children[i] != nil {
				stack = append(stack, n.Children[i])
			}
		}
	}
	return flat
}
