package barrel

import "sort"

// Settlement is the priced outcome of a set of session consumption figures.
type Settlement struct {
	Consumed      map[string]float64
	Owed          map[string]float64
	TotalConsumed float64
	PricePerUnit  float64
}

// EffectivePricePerUnit applies the closing rule. When less than the nominal
// volume was drunk, the full price is spread over what was actually drunk;
// a session with zero consumption divides by 1 so the price stays finite.
func EffectivePricePerUnit(unitPrice, nominalVolume, totalConsumed float64) float64 {
	if totalConsumed < nominalVolume {
		divisor := totalConsumed
		if divisor == 0 {
			divisor = 1
		}
		return unitPrice / divisor
	}
	return unitPrice / nominalVolume
}

// Settle prices consumed at the effective closing rate.
func Settle(unitPrice, nominalVolume float64, consumed map[string]float64) Settlement {
	ids := make([]string, 0, len(consumed))
	for id := range consumed {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var total float64
	for _, id := range ids {
		total += consumed[id]
	}

	price := EffectivePricePerUnit(unitPrice, nominalVolume, total)
	return Settlement{
		Consumed:      cloneAmounts(consumed),
		Owed:          priceAmounts(consumed, price),
		TotalConsumed: total,
		PricePerUnit:  price,
	}
}

func priceAmounts(consumed map[string]float64, pricePerUnit float64) map[string]float64 {
	owed := make(map[string]float64, len(consumed))
	for id, amount := range consumed {
		owed[id] = amount * pricePerUnit
	}
	return owed
}
