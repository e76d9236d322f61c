package parse

import "time"

// RepairTimestamps fills missing timestamps with the nearest later
// timestamp in the sequence, or with fallback (the file's modification
// time) when no later message has one. The input is left untouched; order
// is preserved. Repairing a repaired sequence changes nothing.
func RepairTimestamps(msgs []ParsedMessage, fallback time.Time) []ParsedMessage {
	if msgs == nil {
		return nil
	}
	out := make([]ParsedMessage, len(msgs))
	next := fallback
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		if m.HasTimestamp() {
			next = m.Timestamp
		} else {
			m.Timestamp = next
		}
		out[i] = m
	}
	return out
}
