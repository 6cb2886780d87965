package indicators

import (
	"math"

	"opentrade/internal/models"
)

// BollingerBands calculates the upper, middle, and lower bands using a
// simple moving average and the given standard-deviation multiplier.
func BollingerBands(candles []models.Candle, period int, mult float64) (upper, middle, lower []float64, err error) {
	if period <= 0 {
		return nil, nil, nil, ErrInvalidPeriod
	}
	if len(candles) < period {
		return nil, nil, nil, ErrInsufficientData
	}

	closes := closePrices(candles)
	n := len(closes)
	middle, _ = SMA(candles, period)
	upper = make([]float64, n)
	lower = make([]float64, n)

	for i := 0; i < period-1; i++ {
		upper[i] = math.NaN()
		lower[i] = math.NaN()
	}
	for i := period - 1; i < n; i++ {
		window := closes[i-period+1 : i+1]
		m := middle[i]
		var variance float64
		for _, v := range window {
			variance += (v - m) * (v - m)
		}
		std := math.Sqrt(variance / float64(period))
		upper[i] = m + mult*std
		lower[i] = m - mult*std
	}
	return upper, middle, lower, nil
}

// ATR calculates the Average True Range with Wilder smoothing.
func ATR(candles []models.Candle, period int) ([]float64, error) {
	if period <= 0 {
		return nil, ErrInvalidPeriod
	}
	if len(candles) < period+1 {
		return nil, ErrInsufficientData
	}

	n := len(candles)
	tr := make([]float64, n)
	for i := 1; i < n; i++ {
		highLow := candles[i].High - candles[i].Low
		highClose := absf(candles[i].High - candles[i-1].Close)
		lowClose := absf(candles[i].Low - candles[i-1].Close)
		tr[i] = maxf(highLow, maxf(highClose, lowClose))
	}

	result := make([]float64, n)
	for i := 0; i < period; i++ {
		result[i] = math.NaN()
	}
	result[period] = mean(tr[1 : period+1])
	for i := period + 1; i < n; i++ {
		result[i] = (result[i-1]*float64(period-1) + tr[i]) / float64(period)
	}
	return result, nil
}
