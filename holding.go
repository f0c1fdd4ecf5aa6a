package portfel

// Holding is one account's contribution to a position: the accumulated
// quantity of an instrument held at a broker, and the average price paid per
// unit there. Sells are not tracked; holdings only accumulate.
type Holding struct {
	AccountID string
	Symbol    string
	Quantity  Quantity
	CostBasis Money // average price paid per unit in this account
	FirstBuy  Date  // date of the first purchase, anchors the XIRR cash flow
}

// merge folds an additional purchase into the holding by quantity-weighted
// averaging:
//
//	newCost = (oldQty×oldCost + addQty×addCost) / (oldQty + addQty)
//
// The earliest purchase date is kept.
func (h Holding) merge(quantity Quantity, costBasis Money, on Date) Holding {
	oldInvested := h.CostBasis.Mul(h.Quantity)
	addInvested := costBasis.Mul(quantity)
	newQty := h.Quantity.Add(quantity)

	h.Quantity = newQty
	h.CostBasis = oldInvested.Add(addInvested).Div(newQty)
	if !on.IsZero() && (h.FirstBuy.IsZero() || on.Before(h.FirstBuy)) {
		h.FirstBuy = on
	}
	return h
}

// Invested returns the total amount paid for this holding.
func (h Holding) Invested() Money {
	return h.CostBasis.Mul(h.Quantity)
}

func (h Holding) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("account", h.AccountID)
	w.Append("symbol", h.Symbol)
	w.Append("quantity", h.Quantity)
	w.Append("costBasis", h.CostBasis)
	w.Optional("firstBuy", h.FirstBuy)
	return w.MarshalJSON()
}
