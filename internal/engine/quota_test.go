package engine

import (
	"testing"
)

func TestUnitCost(t *testing.T) {
	tests := []struct {
		kind EndpointKind
		want int
	}{
		{KindSearch, 100},
		{KindVideos, 1},
		{KindChannels, 1},
		{EndpointKind("bogus"), 0},
	}
	for _, tt := range tests {
		if got := tt.kind.UnitCost(); got != tt.want {
			t.Errorf("UnitCost(%s) = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func TestLedgerRecord(t *testing.T) {
	l := NewLedger()
	l.Record(KindSearch, "search?q=a")
	l.Record(KindSearch, "search?q=b")
	l.Record(KindVideos, "videos?id=x")
	l.Record(KindChannels, "channels?id=y")

	snap := l.Snapshot()
	if snap.Units != 202 {
		t.Errorf("units = %d, want 202", snap.Units)
	}
	if snap.Calls[KindSearch] != 2 || snap.Calls[KindVideos] != 1 || snap.Calls[KindChannels] != 1 {
		t.Errorf("calls = %v", snap.Calls)
	}

	// Units must equal the sum over the spend log.
	var sum int
	for _, e := range l.Log() {
		sum += e.Units
	}
	if sum != snap.Units {
		t.Errorf("log sum = %d, snapshot units = %d", sum, snap.Units)
	}
}

func TestLedgerRemaining(t *testing.T) {
	l := NewLedger()
	l.Record(KindSearch, "search")
	if got := l.Remaining(150); got != 50 {
		t.Errorf("Remaining(150) = %d, want 50", got)
	}
	// Never negative.
	if got := l.Remaining(50); got != 0 {
		t.Errorf("Remaining(50) = %d, want 0", got)
	}
}

func TestLedgerLogIsCopy(t *testing.T) {
	l := NewLedger()
	l.Record(KindVideos, "videos")
	log := l.Log()
	log[0].Units = 999
	if l.Log()[0].Units != 1 {
		t.Error("mutating the returned log leaked into the ledger")
	}
}

func TestEstimateRun(t *testing.T) {
	// 2 channels x 120 max (3 pages each), 1 keyword x 50 max (1 page),
	// over 2 regions.
	est := EstimateRun(2, 1, 120, 50, 2, DefaultDailyQuota)

	if est.SearchCalls != 14 {
		t.Errorf("SearchCalls = %d, want 14", est.SearchCalls)
	}
	if est.SearchUnits != 1400 {
		t.Errorf("SearchUnits = %d, want 1400", est.SearchUnits)
	}
	// maxVideos = 2*(2*120 + 1*50) = 580 -> 12 detail batches
	if est.VideoCalls != 12 {
		t.Errorf("VideoCalls = %d, want 12", est.VideoCalls)
	}
	if est.ChannelCallsMin != 1 || est.ChannelCallsMax != 12 {
		t.Errorf("ChannelCalls = [%d,%d], want [1,12]", est.ChannelCallsMin, est.ChannelCallsMax)
	}
	if est.TotalUnitsMin != 1413 || est.TotalUnitsMax != 1424 {
		t.Errorf("TotalUnits = [%d,%d], want [1413,1424]", est.TotalUnitsMin, est.TotalUnitsMax)
	}
	if est.OverBudget {
		t.Error("OverBudget = true, want false")
	}
}

func TestEstimateRunOverBudget(t *testing.T) {
	est := EstimateRun(0, 30, 0, 200, 1, DefaultDailyQuota)
	// 30 keywords x 4 pages = 120 search calls = 12000 units
	if !est.OverBudget {
		t.Errorf("expected over budget, got %+v", est)
	}
}

func TestEstimateRunEmpty(t *testing.T) {
	est := EstimateRun(0, 0, 0, 0, 1, DefaultDailyQuota)
	if est.TotalUnitsMax != 0 {
		t.Errorf("TotalUnitsMax = %d, want 0", est.TotalUnitsMax)
	}
	if est.ChannelCallsMin != 0 || est.ChannelCallsMax != 0 {
		t.Errorf("expected no channel calls, got [%d,%d]", est.ChannelCallsMin, est.ChannelCallsMax)
	}
}
