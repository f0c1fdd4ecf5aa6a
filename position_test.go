package portfel

import (
	"errors"
	"testing"
	"time"
)

var testDay = NewDate(2024, time.January, 15)

// declare is a test helper: a portfolio with the given symbols declared.
func declare(t *testing.T, symbols ...string) *Portfolio {
	t.Helper()
	p := NewPortfolio()
	for _, sym := range symbols {
		if _, err := p.Declare(sym, "", ETF); err != nil {
			t.Fatal(err)
		}
	}
	return p
}

func TestApplyHoldingWeightedAverage(t *testing.T) {
	p := declare(t, "SWRD")

	if _, err := p.ApplyHolding("SWRD", "ike", Q(50), PLN(500), testDay, ApplyAnyVersion); err != nil {
		t.Fatal(err)
	}
	pos, err := p.ApplyHolding("SWRD", "ike", Q(30), PLN(520), testDay.Add(30), ApplyAnyVersion)
	if err != nil {
		t.Fatal(err)
	}

	if got, want := pos.TotalQuantity, Q(80); !got.Equal(want) {
		t.Errorf("TotalQuantity: got %s, want %s", got, want)
	}
	if got, want := pos.AvgCostBasis, PLN(507.50); !got.Equal(want) {
		t.Errorf("AvgCostBasis: got %s, want %s", got.Amount(), want.Amount())
	}
	if got, want := pos.Invested(), PLN(40600); !got.Equal(want) {
		t.Errorf("Invested: got %s, want %s", got.Amount(), want.Amount())
	}
	if len(pos.Holdings) != 1 {
		t.Fatalf("same account should merge into one holding, got %d", len(pos.Holdings))
	}
	if got := pos.Holdings[0].FirstBuy; got != testDay {
		t.Errorf("FirstBuy should keep the earliest date, got %s", got)
	}
}

func TestApplyHoldingAcrossAccounts(t *testing.T) {
	p := declare(t, "SWRD")

	if _, err := p.ApplyHolding("SWRD", "ike", Q(50), PLN(500), testDay, ApplyAnyVersion); err != nil {
		t.Fatal(err)
	}
	pos, err := p.ApplyHolding("SWRD", "brokerage", Q(30), PLN(520), testDay, ApplyAnyVersion)
	if err != nil {
		t.Fatal(err)
	}

	if len(pos.Holdings) != 2 {
		t.Fatalf("want one holding per account, got %d", len(pos.Holdings))
	}
	// Aggregates are identical whether lots sit in one account or two.
	if got, want := pos.TotalQuantity, Q(80); !got.Equal(want) {
		t.Errorf("TotalQuantity: got %s, want %s", got, want)
	}
	if got, want := pos.AvgCostBasis, PLN(507.50); !got.Equal(want) {
		t.Errorf("AvgCostBasis: got %s, want %s", got.Amount(), want.Amount())
	}

	h, ok := pos.Holding("brokerage")
	if !ok {
		t.Fatal("brokerage holding not found")
	}
	if !h.Quantity.Equal(Q(30)) || !h.CostBasis.Equal(PLN(520)) {
		t.Errorf("brokerage holding: got %s @ %s", h.Quantity, h.CostBasis.Amount())
	}
}

func TestApplyHoldingOrderIndependence(t *testing.T) {
	type buy struct {
		account string
		qty     Quantity
		cost    Money
	}
	buys := []buy{
		{"ike", Q(50), PLN(500)},
		{"ikze", Q(30), PLN(520)},
		{"ike", Q(12.5), PLN(498.40)},
	}

	apply := func(order []int) *Position {
		p := declare(t, "SWRD")
		for _, i := range order {
			b := buys[i]
			if _, err := p.ApplyHolding("SWRD", b.account, b.qty, b.cost, testDay, ApplyAnyVersion); err != nil {
				t.Fatal(err)
			}
		}
		pos, _ := p.Snapshot().Position("SWRD")
		return pos
	}

	a := apply([]int{0, 1, 2})
	b := apply([]int{2, 0, 1})
	if !a.TotalQuantity.Equal(b.TotalQuantity) {
		t.Errorf("TotalQuantity depends on order: %s vs %s", a.TotalQuantity, b.TotalQuantity)
	}
	if !a.AvgCostBasis.Equal(b.AvgCostBasis) {
		t.Errorf("AvgCostBasis depends on order: %s vs %s", a.AvgCostBasis.Amount(), b.AvgCostBasis.Amount())
	}
}

func TestApplyHoldingRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		qty  Quantity
		cost Money
	}{
		{name: "zero quantity", qty: Q(0), cost: PLN(100)},
		{name: "negative quantity", qty: Q(-5), cost: PLN(100)},
		{name: "zero cost", qty: Q(5), cost: PLN(0)},
		{name: "negative cost", qty: Q(5), cost: PLN(-100)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := declare(t, "SWRD")
			_, err := p.ApplyHolding("SWRD", "ike", tt.qty, tt.cost, testDay, ApplyAnyVersion)
			var invalid *InvalidHoldingError
			if !errors.As(err, &invalid) {
				t.Fatalf("want *InvalidHoldingError, got %v", err)
			}
		})
	}
}

func TestApplyHoldingUndeclared(t *testing.T) {
	p := NewPortfolio()
	if _, err := p.ApplyHolding("SWRD", "ike", Q(1), PLN(100), testDay, ApplyAnyVersion); err == nil {
		t.Fatal("applying to an undeclared instrument should fail")
	}
}

func TestApplyHoldingVersionConflict(t *testing.T) {
	p := declare(t, "SWRD")

	pos, err := p.ApplyHolding("SWRD", "ike", Q(1), PLN(100), testDay, 0)
	if err != nil {
		t.Fatal(err)
	}
	if pos.Version() != 1 {
		t.Fatalf("version after first apply: got %d, want 1", pos.Version())
	}

	// A writer holding the stale version must not get through.
	if _, err := p.ApplyHolding("SWRD", "ike", Q(1), PLN(100), testDay, 0); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("want ErrVersionConflict, got %v", err)
	}
	// The observed version does.
	if _, err := p.ApplyHolding("SWRD", "ike", Q(1), PLN(100), testDay, pos.Version()); err != nil {
		t.Fatal(err)
	}
}

func TestResolvePendingCost(t *testing.T) {
	p := declare(t, "SWRD")
	p.AddPending(PendingCost{AccountID: "ike", Symbol: "SWRD", Quantity: Q(50), On: testDay})

	pos, err := p.ResolvePending("SWRD", "ike", PLN(500))
	if err != nil {
		t.Fatal(err)
	}
	if !pos.TotalQuantity.Equal(Q(50)) || !pos.AvgCostBasis.Equal(PLN(500)) {
		t.Errorf("got %s @ %s", pos.TotalQuantity, pos.AvgCostBasis.Amount())
	}
	if got := pos.Holdings[0].FirstBuy; got != testDay {
		t.Errorf("holding should keep the original purchase date, got %s", got)
	}
	if pending := p.Snapshot().PendingCost(); len(pending) != 0 {
		t.Errorf("resolved record still pending: %+v", pending)
	}

	// Nothing left to resolve.
	if _, err := p.ResolvePending("SWRD", "ike", PLN(500)); err == nil {
		t.Error("second resolve should fail")
	}
}

func TestResolvePendingCostMergesWithHoldings(t *testing.T) {
	p := declare(t, "SWRD")
	if _, err := p.ApplyHolding("SWRD", "ike", Q(30), PLN(520), testDay, ApplyAnyVersion); err != nil {
		t.Fatal(err)
	}
	p.AddPending(PendingCost{AccountID: "ike", Symbol: "SWRD", Quantity: Q(50), On: testDay.Add(30)})

	pos, err := p.ResolvePending("SWRD", "ike", PLN(500))
	if err != nil {
		t.Fatal(err)
	}
	if !pos.TotalQuantity.Equal(Q(80)) || !pos.AvgCostBasis.Equal(PLN(507.50)) {
		t.Errorf("got %s @ %s", pos.TotalQuantity, pos.AvgCostBasis.Amount())
	}
}

func TestResolvePendingCostRejectsInvalid(t *testing.T) {
	p := declare(t, "SWRD")
	p.AddPending(PendingCost{AccountID: "ike", Symbol: "SWRD", Quantity: Q(50), On: testDay})

	var invalid *InvalidHoldingError
	if _, err := p.ResolvePending("SWRD", "ike", PLN(0)); !errors.As(err, &invalid) {
		t.Errorf("zero cost: want *InvalidHoldingError, got %v", err)
	}
	if _, err := p.ResolvePending("NOPE", "ike", PLN(500)); err == nil {
		t.Error("undeclared instrument should fail")
	}
	if _, err := p.ResolvePending("SWRD", "ikze", PLN(500)); err == nil {
		t.Error("account without a pending record should fail")
	}
}

func TestSnapshotIsolation(t *testing.T) {
	p := declare(t, "SWRD")
	if _, err := p.ApplyHolding("SWRD", "ike", Q(50), PLN(500), testDay, ApplyAnyVersion); err != nil {
		t.Fatal(err)
	}

	s := p.Snapshot()
	if _, err := p.ApplyHolding("SWRD", "ike", Q(30), PLN(520), testDay, ApplyAnyVersion); err != nil {
		t.Fatal(err)
	}

	pos, _ := s.Position("SWRD")
	if got, want := pos.TotalQuantity, Q(50); !got.Equal(want) {
		t.Errorf("snapshot changed under a later write: got %s, want %s", got, want)
	}
}
