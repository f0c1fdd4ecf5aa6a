package portfel

import (
	"testing"
)

func pricedSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	p := declare(t, "SWRD")
	if _, err := p.ApplyHolding("SWRD", "ike", Q(50), PLN(500), testDay, ApplyAnyVersion); err != nil {
		t.Fatal(err)
	}
	if _, err := p.ApplyHolding("SWRD", "ike", Q(30), PLN(520), testDay.Add(30), ApplyAnyVersion); err != nil {
		t.Fatal(err)
	}
	if err := p.SetPrice("SWRD", PLN(550), testDay.Add(60).Time()); err != nil {
		t.Fatal(err)
	}
	return p.Snapshot()
}

func TestComputeMetrics(t *testing.T) {
	s := pricedSnapshot(t)
	pos, _ := s.Position("SWRD")
	price, priced := s.Price("SWRD")
	m := ComputeMetrics(pos, price, priced)

	if got, want := m.InvestedAmount, PLN(40600); !got.Equal(want) {
		t.Errorf("InvestedAmount: got %s, want %s", got.Amount(), want.Amount())
	}
	if got, want := m.CurrentValue, PLN(44000); !got.Equal(want) {
		t.Errorf("CurrentValue: got %s, want %s", got.Amount(), want.Amount())
	}
	if got, want := m.ProfitLoss, PLN(3400); !got.Equal(want) {
		t.Errorf("ProfitLoss: got %s, want %s", got.Amount(), want.Amount())
	}
	if got, want := m.ReturnPercentage, Percent(3400.0/40600.0*100); !got.Equal(want) {
		t.Errorf("ReturnPercentage: got %s, want %s", got, want)
	}
}

func TestReturnPercent(t *testing.T) {
	tests := []struct {
		name     string
		invested Money
		value    Money
		want     Percent
	}{
		{name: "gain", invested: PLN(1000), value: PLN(1080), want: 8},
		{name: "loss", invested: PLN(1000), value: PLN(950), want: -5},
		{name: "flat", invested: PLN(1000), value: PLN(1000), want: 0},
		{name: "zero invested", invested: PLN(0), value: PLN(0), want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := returnPercent(tt.value.Sub(tt.invested), tt.invested)
			if !got.Equal(tt.want) {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestComputeMetricsUnpriced(t *testing.T) {
	p := declare(t, "SWRD")
	if _, err := p.ApplyHolding("SWRD", "ike", Q(50), PLN(500), testDay, ApplyAnyVersion); err != nil {
		t.Fatal(err)
	}
	s := p.Snapshot()
	pos, _ := s.Position("SWRD")
	price, priced := s.Price("SWRD")

	m := ComputeMetrics(pos, price, priced)
	if m.Priced {
		t.Fatal("Priced should be false before the first price update")
	}
	if got, want := m.InvestedAmount, PLN(25000); !got.Equal(want) {
		t.Errorf("InvestedAmount: got %s, want %s", got.Amount(), want.Amount())
	}
	if !m.CurrentValue.IsZero() || !m.ProfitLoss.IsZero() {
		t.Error("value metrics must stay zero-valued while unpriced")
	}
}

func TestSummaryEmptyPortfolio(t *testing.T) {
	sum := NewPortfolio().Snapshot().Summary(testDay)

	if !sum.TotalCurrentValue.IsZero() || !sum.TotalInvestedAmount.IsZero() || !sum.TotalProfitLoss.IsZero() {
		t.Error("empty portfolio totals should be zero")
	}
	if sum.TotalReturnPercentage != 0 {
		t.Errorf("empty portfolio return: got %s, want 0.00%%", sum.TotalReturnPercentage)
	}
	if sum.PositionsCount != 0 {
		t.Errorf("PositionsCount: got %d, want 0", sum.PositionsCount)
	}
	if sum.XIRRAvailable {
		t.Error("XIRR cannot be available with no flows")
	}
}

func TestSummaryExcludesUnpriced(t *testing.T) {
	p := declare(t, "SWRD", "CDR.WA")
	if _, err := p.ApplyHolding("SWRD", "ike", Q(10), PLN(100), testDay, ApplyAnyVersion); err != nil {
		t.Fatal(err)
	}
	if _, err := p.ApplyHolding("CDR.WA", "ike", Q(5), PLN(200), testDay, ApplyAnyVersion); err != nil {
		t.Fatal(err)
	}
	if err := p.SetPrice("SWRD", PLN(110), testDay.Time()); err != nil {
		t.Fatal(err)
	}

	sum := p.Snapshot().Summary(testDay.Add(365))

	// Invested counts everything; value and P&L only the priced position.
	if got, want := sum.TotalInvestedAmount, PLN(2000); !got.Equal(want) {
		t.Errorf("TotalInvestedAmount: got %s, want %s", got.Amount(), want.Amount())
	}
	if got, want := sum.TotalCurrentValue, PLN(1100); !got.Equal(want) {
		t.Errorf("TotalCurrentValue: got %s, want %s", got.Amount(), want.Amount())
	}
	if got, want := sum.TotalProfitLoss, PLN(100); !got.Equal(want) {
		t.Errorf("TotalProfitLoss: got %s, want %s", got.Amount(), want.Amount())
	}
	if got, want := sum.TotalReturnPercentage, Percent(10); !got.Equal(want) {
		t.Errorf("TotalReturnPercentage: got %s, want %s", got, want)
	}
	if len(sum.PricesPending) != 1 || sum.PricesPending[0] != "CDR.WA" {
		t.Errorf("PricesPending: got %v, want [CDR.WA]", sum.PricesPending)
	}
	if sum.XIRRAvailable {
		t.Error("a pending price must make the portfolio XIRR unavailable")
	}
}

func TestSummaryListsCostsPending(t *testing.T) {
	p := declare(t, "SWRD")
	p.AddPending(PendingCost{AccountID: "ike", Symbol: "SWRD", Quantity: Q(50), On: testDay})

	sum := p.Snapshot().Summary(testDay.Add(30))

	// A holding without a cost basis is not a position yet, but it must not
	// vanish from the summary either.
	if sum.PositionsCount != 0 {
		t.Errorf("PositionsCount: got %d, want 0", sum.PositionsCount)
	}
	if len(sum.CostsPending) != 1 {
		t.Fatalf("CostsPending: got %v, want one entry", sum.CostsPending)
	}
	pc := sum.CostsPending[0]
	if pc.Symbol != "SWRD" || pc.AccountID != "ike" || !pc.Quantity.Equal(Q(50)) {
		t.Errorf("CostsPending[0]: got %+v", pc)
	}
}

func TestPositionViewsSorting(t *testing.T) {
	p := declare(t, "AAA", "BBB", "CCC")
	for _, buy := range []struct {
		sym  string
		qty  Quantity
		cost Money
	}{
		{"AAA", Q(10), PLN(100)}, // value 1500, pnl +500
		{"BBB", Q(20), PLN(100)}, // value 1000, pnl -1000
		{"CCC", Q(5), PLN(100)},  // unpriced
	} {
		if _, err := p.ApplyHolding(buy.sym, "ike", buy.qty, buy.cost, testDay, ApplyAnyVersion); err != nil {
			t.Fatal(err)
		}
	}
	if err := p.SetPrice("AAA", PLN(150), testDay.Time()); err != nil {
		t.Fatal(err)
	}
	if err := p.SetPrice("BBB", PLN(50), testDay.Time()); err != nil {
		t.Fatal(err)
	}
	s := p.Snapshot()

	symbols := func(views []PositionView) []string {
		out := make([]string, len(views))
		for i, v := range views {
			out[i] = v.Symbol
		}
		return out
	}
	equal := func(got, want []string) bool {
		if len(got) != len(want) {
			return false
		}
		for i := range got {
			if got[i] != want[i] {
				return false
			}
		}
		return true
	}

	tests := []struct {
		name       string
		key        SortKey
		descending bool
		want       []string
	}{
		{name: "value descending", key: ByCurrentValue, descending: true, want: []string{"AAA", "BBB", "CCC"}},
		{name: "value ascending", key: ByCurrentValue, want: []string{"CCC", "BBB", "AAA"}},
		{name: "pnl descending", key: ByProfitLoss, descending: true, want: []string{"AAA", "BBB", "CCC"}},
		{name: "quantity descending", key: ByQuantity, descending: true, want: []string{"BBB", "AAA", "CCC"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := symbols(s.PositionViews(testDay.Add(365), tt.key, tt.descending))
			if !equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseSortKey(t *testing.T) {
	for in, want := range map[string]SortKey{
		"value": ByCurrentValue, "return": ByReturnPercentage, "pnl": ByProfitLoss, "quantity": ByQuantity,
	} {
		got, err := ParseSortKey(in)
		if err != nil || got != want {
			t.Errorf("ParseSortKey(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseSortKey("alpha"); err == nil {
		t.Error("unknown sort key should fail")
	}
}

func TestPositionDetail(t *testing.T) {
	s := pricedSnapshot(t)

	v, ok := s.PositionDetail("SWRD", testDay.Add(365))
	if !ok {
		t.Fatal("position not found")
	}
	if len(v.Holdings) != 1 {
		t.Fatalf("detail view should carry the account breakdown, got %d holdings", len(v.Holdings))
	}
	if !v.Priced || !v.XIRRAvailable {
		t.Error("a priced position with elapsed time should have value metrics and an XIRR")
	}

	if _, ok := s.PositionDetail("NOPE", testDay); ok {
		t.Error("unknown symbol should not resolve")
	}
}
