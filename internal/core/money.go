package core

// Totals holds the financial figures of one order or of a group of orders.
type Totals struct {
	Labor     float64 `json:"labor"`
	PartsCost float64 `json:"partsCost"`
	PartsSell float64 `json:"partsSell"`
	Revenue   float64 `json:"revenue"`
	COGS      float64 `json:"cogs"`
	Profit    float64 `json:"profit"`
}

// Calc computes totals for a list of services. It never mutates its input
// and performs no rounding or clamping: negative profit stays negative.
func Calc(services []ServiceLine) Totals {
	var t Totals
	for _, svc := range services {
		t.Labor += float64(svc.LaborPrice)
		for _, p := range svc.Parts {
			qty := p.Qty.Effective()
			t.PartsCost += float64(p.CostPrice) * qty
			t.PartsSell += float64(p.SellPrice) * qty
		}
	}
	t.Revenue = t.PartsSell + t.Labor
	t.COGS = t.PartsCost
	t.Profit = t.Revenue - t.COGS
	return t
}

// Totals computes the order's financial totals.
func (o Order) Totals() Totals {
	return Calc(o.Services)
}

// Add returns the field-wise sum of t and other.
func (t Totals) Add(other Totals) Totals {
	return Totals{
		Labor:     t.Labor + other.Labor,
		PartsCost: t.PartsCost + other.PartsCost,
		PartsSell: t.PartsSell + other.PartsSell,
		Revenue:   t.Revenue + other.Revenue,
		COGS:      t.COGS + other.COGS,
		Profit:    t.Profit + other.Profit,
	}
}

// Markup is the parts margin: sell minus cost.
func (t Totals) Markup() float64 {
	return t.PartsSell - t.PartsCost
}

// Margin returns profit as a percentage of revenue, or 0 without revenue.
func (t Totals) Margin() float64 {
	if t.Revenue == 0 {
		return 0
	}
	return t.Profit / t.Revenue * 100
}
