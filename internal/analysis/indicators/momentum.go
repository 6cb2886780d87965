package indicators

import (
	"math"

	"opentrade/internal/models"
)

// RSI calculates the Relative Strength Index with Wilder smoothing.
func RSI(candles []models.Candle, period int) ([]float64, error) {
	if period <= 0 {
		return nil, ErrInvalidPeriod
	}
	if len(candles) < period+1 {
		return nil, ErrInsufficientData
	}

	closes := closePrices(candles)
	n := len(closes)
	result := make([]float64, n)
	for i := 0; i < period; i++ {
		result[i] = math.NaN()
	}

	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}

	avgGain := mean(gains[1 : period+1])
	avgLoss := mean(losses[1 : period+1])
	result[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < n; i++ {
		avgGain = (avgGain*float64(period-1) + gains[i]) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + losses[i]) / float64(period)
		result[i] = rsiValue(avgGain, avgLoss)
	}
	return result, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// Stochastic calculates the Stochastic Oscillator %K and %D series.
func Stochastic(candles []models.Candle, kPeriod, dPeriod int) (k, d []float64, err error) {
	if kPeriod <= 0 || dPeriod <= 0 {
		return nil, nil, ErrInvalidPeriod
	}
	if len(candles) < kPeriod+dPeriod-1 {
		return nil, nil, ErrInsufficientData
	}

	n := len(candles)
	k = make([]float64, n)
	for i := 0; i < kPeriod-1; i++ {
		k[i] = math.NaN()
	}

	for i := kPeriod - 1; i < n; i++ {
		high := candles[i-kPeriod+1].High
		low := candles[i-kPeriod+1].Low
		for j := i - kPeriod + 2; j <= i; j++ {
			if candles[j].High > high {
				high = candles[j].High
			}
			if candles[j].Low < low {
				low = candles[j].Low
			}
		}
		if high == low {
			k[i] = 50
		} else {
			k[i] = (candles[i].Close - low) / (high - low) * 100
		}
	}

	d = make([]float64, n)
	for i := 0; i < kPeriod+dPeriod-2; i++ {
		d[i] = math.NaN()
	}
	for i := kPeriod + dPeriod - 2; i < n; i++ {
		d[i] = mean(k[i-dPeriod+1 : i+1])
	}
	return k, d, nil
}
