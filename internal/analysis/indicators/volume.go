package indicators

import "opentrade/internal/models"

// OBV calculates the On-Balance Volume series.
func OBV(candles []models.Candle) ([]float64, error) {
	if len(candles) < 2 {
		return nil, ErrInsufficientData
	}

	n := len(candles)
	result := make([]float64, n)
	for i := 1; i < n; i++ {
		switch {
		case candles[i].Close > candles[i-1].Close:
			result[i] = result[i-1] + float64(candles[i].Volume)
		case candles[i].Close < candles[i-1].Close:
			result[i] = result[i-1] - float64(candles[i].Volume)
		default:
			result[i] = result[i-1]
		}
	}
	return result, nil
}
