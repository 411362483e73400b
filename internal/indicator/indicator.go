package indicator

// Type selects the moving-average flavor used by the simulator.
type Type string

const (
	TypeSMA Type = "sma"
	TypeEMA Type = "ema"
)

// Valid reports whether t names a known moving-average type.
func (t Type) Valid() bool {
	return t == TypeSMA || t == TypeEMA
}

// MovingAverage computes the moving average of the given type.
// Returns a slice of length len(prices) - period + 1; the value at
// index i is the average ending at prices[i+period-1].
func MovingAverage(t Type, prices []float64, period int) []float64 {
	if t == TypeEMA {
		return EMA(prices, period)
	}
	return SMA(prices, period)
}

// SMA calculates Simple Moving Average with a rolling sum.
// Returns slice of length: len(prices) - period + 1
func SMA(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period {
		return []float64{}
	}

	result := make([]float64, 0, len(prices)-period+1)

	var sum float64
	for i := 0; i < period; i++ {
		sum += prices[i]
	}
	result = append(result, sum/float64(period))

	for i := period; i < len(prices); i++ {
		sum = sum - prices[i-period] + prices[i]
		result = append(result, sum/float64(period))
	}

	return result
}

// EMA calculates Exponential Moving Average, seeded with the SMA of
// the first period values.
func EMA(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period {
		return []float64{}
	}

	result := make([]float64, 0, len(prices)-period+1)
	multiplier := 2.0 / float64(period+1)

	var sum float64
	for i := 0; i < period; i++ {
		sum += prices[i]
	}
	ema := sum / float64(period)
	result = append(result, ema)

	for i := period; i < len(prices); i++ {
		ema = (prices[i]-ema)*multiplier + ema
		result = append(result, ema)
	}

	return result
}
