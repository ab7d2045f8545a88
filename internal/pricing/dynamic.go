package pricing

import (
	"github.com/shopspring/decimal"
)

// Limites padrão das odds pari-mutuel (margem da casa limitada).
const (
	DefaultMinOdds = 1.2
	DefaultMaxOdds = 5.0
)

// Bounds limita as odds dinâmicas a [Min, Max].
type Bounds struct {
	Min float64
	Max float64
}

// DefaultBounds retorna [1.2, 5.0].
func DefaultBounds() Bounds { return Bounds{Min: DefaultMinOdds, Max: DefaultMaxOdds} }

// PriceDynamic calcula, para cada seleção com stake > 0,
// clamp(2*totalPool/stakeSeleção, Min, Max) arredondado para 2 casas.
// Seleções sem stake ficam fora do resultado.
func PriceDynamic(stakes map[string]int64, b Bounds) map[string]float64 {
	total := decimal.Zero
	for _, s := range stakes {
		if s > 0 {
			total = total.Add(decimal.NewFromInt(s))
		}
	}

	out := make(map[string]float64, len(stakes))
	if total.IsZero() {
		return out
	}

	lo := decimal.NewFromFloat(b.Min)
	hi := decimal.NewFromFloat(b.Max)
	pool := total.Mul(decimal.NewFromInt(2))

	for sel, s := range stakes {
		if s <= 0 {
			continue
		}
		odds := pool.Div(decimal.NewFromInt(s))
		if odds.LessThan(lo) {
			odds = lo
		}
		if odds.GreaterThan(hi) {
			odds = hi
		}
		out[sel] = odds.Round(2).InexactFloat64()
	}
	return out
}
