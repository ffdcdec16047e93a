package subscription

// Plan is one entry in the fixed subscription catalogue. The provider price
// id is what the checkout session is created against; the backend remains
// authoritative for the actual amount charged.
type Plan struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PriceINR    int64  `json:"price_inr"` // display price in whole rupees
	PriceID     string `json:"price_id"`
	Description string `json:"description"`
	Savings     string `json:"savings,omitempty"`
}

var plans = []Plan{
	{
		ID:          "1m",
		Name:        "1 Month",
		PriceINR:    1099,
		PriceID:     "price_1RisNDSGp7YEjcqZBloeFYAC",
		Description: "Perfect for trying out Tablemate",
	},
	{
		ID:          "3m",
		Name:        "3 Months",
		PriceINR:    2999,
		PriceID:     "price_1RisNXSGp7YEjcqZHzL4zJCP",
		Description: "Best value for regular users",
		Savings:     "Save ₹298",
	},
	{
		ID:          "12m",
		Name:        "12 Months",
		PriceINR:    10550,
		PriceID:     "price_1RisO2SGp7YEjcqZDDccoJsl",
		Description: "Ultimate value for committed users",
		Savings:     "Save ₹2,638",
	},
}

// Plans returns the catalogue in display order.
func Plans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

// PlanByID looks up a plan by its public id ("1m", "3m", "12m").
func PlanByID(id string) (Plan, bool) {
	for _, p := range plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}
