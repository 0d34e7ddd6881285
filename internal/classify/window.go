package classify

import (
	"sort"
	"time"

	"gw2-resim/internal/evtc"
)

// DefaultWindow is the correlation tolerance in log milliseconds.
const DefaultWindow = 5

// TickGap is the largest spacing between condition damage records of one
// tick. It does not follow the correlation window.
const TickGap = 5 * time.Millisecond

// window returns the half-open index range of records whose time is within
// delta of records[i], bounds inclusive. records must be sorted by time.
func window(records []evtc.CombatRecord, i int, delta int64) (lo, hi int) {
	at := records[i].Time
	lo = sort.Search(i, func(j int) bool { return records[j].Time >= at-delta })
	hi = i + 1 + sort.Search(len(records)-i-1, func(j int) bool { return records[i+1+j].Time > at+delta })
	return lo, hi
}
