package indicators

import (
	"math"

	"opentrade/internal/models"
)

// SMA calculates the Simple Moving Average series. Positions before the
// first full window are NaN.
func SMA(candles []models.Candle, period int) ([]float64, error) {
	if period <= 0 {
		return nil, ErrInvalidPeriod
	}
	if len(candles) < period {
		return nil, ErrInsufficientData
	}

	closes := closePrices(candles)
	n := len(closes)
	result := make([]float64, n)
	for i := 0; i < period-1; i++ {
		result[i] = math.NaN()
	}

	var sum float64
	for i := 0; i < period; i++ {
		sum += closes[i]
	}
	result[period-1] = sum / float64(period)

	for i := period; i < n; i++ {
		sum += closes[i] - closes[i-period]
		result[i] = sum / float64(period)
	}
	return result, nil
}

// EMA calculates the Exponential Moving Average series, seeded with an SMA
// over the first window.
func EMA(candles []models.Candle, period int) ([]float64, error) {
	if period <= 0 {
		return nil, ErrInvalidPeriod
	}
	if len(candles) < period {
		return nil, ErrInsufficientData
	}

	closes := closePrices(candles)
	return emaSeries(closes, period), nil
}

func emaSeries(values []float64, period int) []float64 {
	n := len(values)
	result := make([]float64, n)
	for i := 0; i < period-1; i++ {
		result[i] = math.NaN()
	}

	result[period-1] = mean(values[:period])
	multiplier := 2.0 / float64(period+1)
	for i := period; i < n; i++ {
		result[i] = (values[i]-result[i-1])*multiplier + result[i-1]
	}
	return result
}

// MACD calculates the Moving Average Convergence Divergence line, its
// signal line, and the histogram for the standard (12, 26, 9) parameters.
func MACD(candles []models.Candle) (macd, signal, histogram []float64, err error) {
	const fast, slow, smooth = 12, 26, 9
	if len(candles) < slow+smooth {
		return nil, nil, nil, ErrInsufficientData
	}

	closes := closePrices(candles)
	fastEMA := emaSeries(closes, fast)
	slowEMA := emaSeries(closes, slow)

	n := len(closes)
	macd = make([]float64, n)
	for i := 0; i < n; i++ {
		macd[i] = fastEMA[i] - slowEMA[i]
	}

	// The signal line smooths the MACD values that exist past the slow
	// warmup.
	valid := macd[slow-1:]
	signalTail := emaSeries(valid, smooth)
	signal = make([]float64, n)
	histogram = make([]float64, n)
	for i := 0; i < slow-1; i++ {
		signal[i] = math.NaN()
		histogram[i] = math.NaN()
	}
	for i, v := range signalTail {
		signal[slow-1+i] = v
		histogram[slow-1+i] = macd[slow-1+i] - v
	}
	return macd, signal, histogram, nil
}
