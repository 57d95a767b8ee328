package engine

import (
	"sync"
	"time"
)

// EndpointKind names one of the three API call kinds. The string value is the
// endpoint path segment.
type EndpointKind string

const (
	KindSearch   EndpointKind = "search"
	KindVideos   EndpointKind = "videos"
	KindChannels EndpointKind = "channels"
)

// DefaultDailyQuota is the provider's per-project daily unit budget.
const DefaultDailyQuota = 10_000

// UnitCost returns the fixed quota cost charged per call of this kind.
func (k EndpointKind) UnitCost() int {
	switch k {
	case KindSearch:
		return 100
	case KindVideos, KindChannels:
		return 1
	}
	return 0
}

// LedgerEntry is one append-only record of quota spend.
type LedgerEntry struct {
	Kind   EndpointKind `json:"kind"`
	Units  int          `json:"units"`
	Target string       `json:"target"`
	At     time.Time    `json:"at"`
}

// Ledger tracks cumulative quota consumption for one session.
// It is mutated only by the Gateway, immediately after each successful call.
type Ledger struct {
	mu    sync.Mutex
	calls map[EndpointKind]int
	units int
	log   []LedgerEntry
}

func NewLedger() *Ledger {
	return &Ledger{calls: make(map[EndpointKind]int)}
}

// Record charges one call of the given kind against the ledger.
func (l *Ledger) Record(kind EndpointKind, target string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls[kind]++
	l.units += kind.UnitCost()
	l.log = append(l.log, LedgerEntry{Kind: kind, Units: kind.UnitCost(), Target: target, At: time.Now()})
}

// LedgerSnapshot is a point-in-time copy of the ledger counters.
type LedgerSnapshot struct {
	Calls map[EndpointKind]int `json:"calls"`
	Units int                  `json:"units"`
}

// Snapshot returns a copy of the current counters.
func (l *Ledger) Snapshot() LedgerSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	calls := make(map[EndpointKind]int, len(l.calls))
	for k, v := range l.calls {
		calls[k] = v
	}
	return LedgerSnapshot{Calls: calls, Units: l.units}
}

// Log returns a copy of the append-only spend log.
func (l *Ledger) Log() []LedgerEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LedgerEntry, len(l.log))
	copy(out, l.log)
	return out
}

// Remaining returns the unspent units against the given daily budget, never negative.
func (l *Ledger) Remaining(budget int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if left := budget - l.units; left > 0 {
		return left
	}
	return 0
}

// RunEstimate is a pre-run min/max projection of quota spend.
// Channel-lookup calls depend on how many distinct channels the detail batch
// surfaces, so that component is a range.
type RunEstimate struct {
	SearchCalls     int  `json:"search_calls"`
	SearchUnits     int  `json:"search_units"`
	VideoCalls      int  `json:"video_calls"`
	VideoUnits      int  `json:"video_units"`
	ChannelCallsMin int  `json:"channel_calls_min"`
	ChannelCallsMax int  `json:"channel_calls_max"`
	TotalUnitsMin   int  `json:"total_units_min"`
	TotalUnitsMax   int  `json:"total_units_max"`
	OverBudget      bool `json:"over_budget"`
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// EstimateRun projects quota spend for a fan-out of the given shape.
// Every (source × region) branch pages in chunks of 50.
func EstimateRun(numChannels, numKeywords, perChannelMax, perKeywordMax, numRegions, budget int) RunEstimate {
	if numRegions < 1 {
		numRegions = 1
	}
	est := RunEstimate{}
	est.SearchCalls = numRegions * (numChannels*ceilDiv(perChannelMax, pageSize) + numKeywords*ceilDiv(perKeywordMax, pageSize))
	est.SearchUnits = est.SearchCalls * KindSearch.UnitCost()

	maxVideos := numRegions * (numChannels*perChannelMax + numKeywords*perKeywordMax)
	est.VideoCalls = ceilDiv(maxVideos, batchSize)
	est.VideoUnits = est.VideoCalls * KindVideos.UnitCost()

	if maxVideos > 0 {
		est.ChannelCallsMin = ceilDiv(numChannels, batchSize)
		est.ChannelCallsMax = ceilDiv(maxVideos, batchSize)
	}

	est.TotalUnitsMin = est.SearchUnits + est.VideoUnits + est.ChannelCallsMin*KindChannels.UnitCost()
	est.TotalUnitsMax = est.SearchUnits + est.VideoUnits + est.ChannelCallsMax*KindChannels.UnitCost()
	est.OverBudget = est.TotalUnitsMax > budget
	return est
}
