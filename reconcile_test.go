package portfel

import (
	"reflect"
	"testing"
)

// reconcileTolerance is the default 0.5% used throughout these tests.
var reconcileTolerance = Q(0.005)

func reconcileSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	p := declare(t, "AAA", "BBB")
	if _, err := p.ApplyHolding("AAA", "ike", Q(10), PLN(100), testDay, ApplyAnyVersion); err != nil {
		t.Fatal(err)
	}
	if _, err := p.ApplyHolding("BBB", "ikze", Q(20), PLN(50), testDay, ApplyAnyVersion); err != nil {
		t.Fatal(err)
	}
	if err := p.SetPrice("AAA", PLN(110), testDay.Time()); err != nil {
		t.Fatal(err)
	}
	if err := p.SetPrice("BBB", PLN(55), testDay.Time()); err != nil {
		t.Fatal(err)
	}
	return p.Snapshot()
}

func TestReconcileClean(t *testing.T) {
	s := reconcileSnapshot(t)
	statement := []StatementLine{
		{Symbol: "AAA", Quantity: Q(10), Value: PLN(1100)},
		{Symbol: "BBB", Quantity: Q(20), Value: PLN(1100)},
	}

	r := Reconcile(s, statement, reconcileTolerance)
	if !r.Clean() {
		t.Fatalf("want a clean run, got %+v", r)
	}
	if len(r.Matches) != 2 {
		t.Errorf("Matches: got %d, want 2", len(r.Matches))
	}
}

func TestReconcileQuantityTakesPrecedence(t *testing.T) {
	s := reconcileSnapshot(t)
	// AAA: wrong quantity and a wildly wrong value. Only the quantity
	// mismatch is reported; the value comparison never runs.
	statement := []StatementLine{
		{Symbol: "AAA", Quantity: Q(12), Value: PLN(9999)},
		{Symbol: "BBB", Quantity: Q(20), Value: PLN(1100)},
	}

	r := Reconcile(s, statement, reconcileTolerance)
	if len(r.QuantityMismatches) != 1 {
		t.Fatalf("QuantityMismatches: got %d, want 1", len(r.QuantityMismatches))
	}
	if len(r.ValueMismatches) != 0 {
		t.Errorf("ValueMismatches: got %d, want 0", len(r.ValueMismatches))
	}
	m := r.QuantityMismatches[0]
	if m.Symbol != "AAA" || !m.SystemQty.Equal(Q(10)) || !m.StatementQty.Equal(Q(12)) {
		t.Errorf("got %+v", m)
	}
}

func TestReconcileValueTolerance(t *testing.T) {
	s := reconcileSnapshot(t)
	// System value of AAA is 1100. With a 0.5% tolerance the threshold on a
	// 1100 statement value is 5.50.
	tests := []struct {
		name     string
		value    Money
		mismatch bool
	}{
		{name: "exact", value: PLN(1100)},
		{name: "inside", value: PLN(1104)},
		{name: "just inside", value: PLN(1094.53)}, // delta 5.47 vs threshold 5.47265
		{name: "outside", value: PLN(1090), mismatch: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			statement := []StatementLine{
				{Symbol: "AAA", Quantity: Q(10), Value: tt.value},
				{Symbol: "BBB", Quantity: Q(20), Value: PLN(1100)},
			}
			r := Reconcile(s, statement, reconcileTolerance)
			if got := len(r.ValueMismatches) > 0; got != tt.mismatch {
				t.Errorf("value %s: mismatch = %v, want %v", tt.value.Amount(), got, tt.mismatch)
			}
		})
	}
}

func TestReconcileValueMismatchDelta(t *testing.T) {
	s := reconcileSnapshot(t)
	statement := []StatementLine{
		{Symbol: "AAA", Quantity: Q(10), Value: PLN(1000)},
		{Symbol: "BBB", Quantity: Q(20), Value: PLN(1100)},
	}

	r := Reconcile(s, statement, reconcileTolerance)
	if len(r.ValueMismatches) != 1 {
		t.Fatalf("ValueMismatches: got %d, want 1", len(r.ValueMismatches))
	}
	m := r.ValueMismatches[0]
	if !m.SystemValue.Equal(PLN(1100)) || !m.StatementValue.Equal(PLN(1000)) {
		t.Errorf("got %+v", m)
	}
	if want := Percent(10); !m.DeltaPct.Equal(want) {
		t.Errorf("DeltaPct: got %s, want %s", m.DeltaPct, want)
	}
}

func TestReconcileMissingAndExtra(t *testing.T) {
	s := reconcileSnapshot(t)
	statement := []StatementLine{
		{Symbol: "AAA", Quantity: Q(10), Value: PLN(1100)},
		{Symbol: "ZZZ", Quantity: Q(7)},
	}

	r := Reconcile(s, statement, reconcileTolerance)
	if len(r.MissingInSystem) != 1 || r.MissingInSystem[0].Symbol != "ZZZ" {
		t.Fatalf("MissingInSystem: got %+v", r.MissingInSystem)
	}
	if !r.MissingInSystem[0].StatementQty.Equal(Q(7)) {
		t.Errorf("StatementQty: got %s", r.MissingInSystem[0].StatementQty)
	}
	if len(r.ExtraInSystem) != 1 || r.ExtraInSystem[0].Symbol != "BBB" {
		t.Fatalf("ExtraInSystem: got %+v", r.ExtraInSystem)
	}
}

func TestReconcileQuantityOnly(t *testing.T) {
	// No value on the statement line, or no system price yet: equal
	// quantities alone make the match.
	p := declare(t, "AAA")
	if _, err := p.ApplyHolding("AAA", "ike", Q(10), PLN(100), testDay, ApplyAnyVersion); err != nil {
		t.Fatal(err)
	}
	s := p.Snapshot()

	r := Reconcile(s, []StatementLine{{Symbol: "AAA", Quantity: Q(10), Value: PLN(9999)}}, reconcileTolerance)
	if !r.Clean() {
		t.Errorf("unpriced position with matching quantity should match, got %+v", r)
	}

	s = reconcileSnapshot(t)
	r = Reconcile(s, []StatementLine{
		{Symbol: "AAA", Quantity: Q(10)},
		{Symbol: "BBB", Quantity: Q(20)},
	}, reconcileTolerance)
	if !r.Clean() {
		t.Errorf("value-less statement lines with matching quantities should match, got %+v", r)
	}
}

func TestReconcilePendingQuantity(t *testing.T) {
	// A record imported without a cost is not a position, but the broker
	// still holds the shares. The quantity counts on the system side.
	p := declare(t, "SWRD")
	p.AddPending(PendingCost{AccountID: "ike", Symbol: "SWRD", Quantity: Q(50), On: testDay})
	s := p.Snapshot()

	r := Reconcile(s, []StatementLine{{Symbol: "SWRD", Quantity: Q(50)}}, reconcileTolerance)
	if !r.Clean() {
		t.Fatalf("pending quantity should match the statement, got %+v", r)
	}
	if len(r.MissingInSystem) != 0 {
		t.Errorf("MissingInSystem: got %+v, want none", r.MissingInSystem)
	}

	r = Reconcile(s, []StatementLine{{Symbol: "SWRD", Quantity: Q(60)}}, reconcileTolerance)
	if len(r.QuantityMismatches) != 1 {
		t.Fatalf("QuantityMismatches: got %+v, want 1", r.QuantityMismatches)
	}
	if m := r.QuantityMismatches[0]; !m.SystemQty.Equal(Q(50)) || !m.StatementQty.Equal(Q(60)) {
		t.Errorf("got %+v", m)
	}
}

func TestReconcilePendingSkipsValueCheck(t *testing.T) {
	// Pending quantities add to an existing priced position, but with the
	// cost picture incomplete only quantities compare.
	p := declare(t, "AAA")
	if _, err := p.ApplyHolding("AAA", "ike", Q(10), PLN(100), testDay, ApplyAnyVersion); err != nil {
		t.Fatal(err)
	}
	if err := p.SetPrice("AAA", PLN(110), testDay.Time()); err != nil {
		t.Fatal(err)
	}
	p.AddPending(PendingCost{AccountID: "ikze", Symbol: "AAA", Quantity: Q(5), On: testDay})

	r := Reconcile(p.Snapshot(), []StatementLine{{Symbol: "AAA", Quantity: Q(15), Value: PLN(9999)}}, reconcileTolerance)
	if !r.Clean() {
		t.Errorf("combined quantity matches, value must not be compared, got %+v", r)
	}
}

func TestReconcileIdempotent(t *testing.T) {
	s := reconcileSnapshot(t)
	statement := []StatementLine{
		{Symbol: "AAA", Quantity: Q(12), Value: PLN(1000)},
		{Symbol: "ZZZ", Quantity: Q(7)},
	}

	first := Reconcile(s, statement, reconcileTolerance)
	second := Reconcile(s, statement, reconcileTolerance)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("two runs over the same inputs differ:\n%+v\n%+v", first, second)
	}
}
