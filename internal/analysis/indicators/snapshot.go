package indicators

import (
	"fmt"
	"math"
	"strings"

	"opentrade/internal/models"
)

// Compute derives the latest value of every indicator from the price
// series. It is pure and has no failure mode: an indicator whose warmup
// window exceeds the available history is simply absent from the snapshot.
func Compute(candles []models.Candle) map[string]float64 {
	snapshot := make(map[string]float64)
	if len(candles) == 0 {
		return snapshot
	}

	put := func(key string, series []float64, err error) {
		if err != nil || len(series) == 0 {
			return
		}
		last := series[len(series)-1]
		if math.IsNaN(last) {
			return
		}
		snapshot[key] = last
	}

	sma20, err := SMA(candles, 20)
	put("sma_20", sma20, err)
	sma50, err := SMA(candles, 50)
	put("sma_50", sma50, err)
	ema12, err := EMA(candles, 12)
	put("ema_12", ema12, err)
	ema26, err := EMA(candles, 26)
	put("ema_26", ema26, err)

	rsi, err := RSI(candles, 14)
	put("rsi", rsi, err)

	if macd, signal, hist, err := MACD(candles); err == nil {
		put("macd", macd, nil)
		put("macd_signal", signal, nil)
		put("macd_histogram", hist, nil)
	}

	if upper, middle, lower, err := BollingerBands(candles, 20, 2); err == nil {
		put("bb_upper", upper, nil)
		put("bb_middle", middle, nil)
		put("bb_lower", lower, nil)
	}

	atr, err := ATR(candles, 14)
	put("atr", atr, err)

	if k, d, err := Stochastic(candles, 14, 3); err == nil {
		put("stoch_k", k, nil)
		put("stoch_d", d, nil)
	}

	obv, err := OBV(candles)
	put("obv", obv, err)

	closes := closePrices(candles)
	snapshot["current_price"] = closes[len(closes)-1]
	if closes[0] != 0 {
		snapshot["price_change_pct"] = (closes[len(closes)-1] - closes[0]) / closes[0] * 100
	}

	var volumeSum float64
	for _, c := range candles {
		volumeSum += float64(c.Volume)
	}
	avgVolume := volumeSum / float64(len(candles))
	snapshot["avg_volume"] = avgVolume
	if avgVolume > 0 && len(candles) >= 5 {
		var recent float64
		for _, c := range candles[len(candles)-5:] {
			recent += float64(c.Volume)
		}
		snapshot["volume_trend"] = recent / 5 / avgVolume
	}

	return snapshot
}

// SignalSummary interprets a snapshot into human-readable per-indicator
// readings plus an "overall" lean and a "confidence" percentage.
func SignalSummary(snapshot map[string]float64) map[string]string {
	signals := make(map[string]string)

	if rsi, ok := snapshot["rsi"]; ok {
		switch {
		case rsi < 30:
			signals["rsi"] = "oversold (bullish)"
		case rsi > 70:
			signals["rsi"] = "overbought (bearish)"
		default:
			signals["rsi"] = "neutral"
		}
	}

	macd, hasMACD := snapshot["macd"]
	macdSignal, hasMACDSignal := snapshot["macd_signal"]
	if hasMACD && hasMACDSignal {
		if macd > macdSignal {
			signals["macd"] = "bullish crossover"
		} else {
			signals["macd"] = "bearish crossover"
		}
	}

	price, hasPrice := snapshot["current_price"]
	if sma20, ok := snapshot["sma_20"]; ok && hasPrice {
		if price > sma20 {
			signals["sma_20"] = "price above SMA20 (bullish)"
		} else {
			signals["sma_20"] = "price below SMA20 (bearish)"
		}
	}
	if sma50, ok := snapshot["sma_50"]; ok && hasPrice {
		if price > sma50 {
			signals["sma_50"] = "price above SMA50 (bullish)"
		} else {
			signals["sma_50"] = "price below SMA50 (bearish)"
		}
	}

	bbUpper, hasUpper := snapshot["bb_upper"]
	bbLower, hasLower := snapshot["bb_lower"]
	if hasPrice && hasUpper && hasLower {
		switch {
		case price >= bbUpper:
			signals["bollinger"] = "at upper band (potential reversal)"
		case price <= bbLower:
			signals["bollinger"] = "at lower band (potential bounce)"
		default:
			signals["bollinger"] = "within bands (normal)"
		}
	}

	if vt, ok := snapshot["volume_trend"]; ok {
		switch {
		case vt > 1.5:
			signals["volume"] = "high volume surge"
		case vt < 0.5:
			signals["volume"] = "low volume"
		default:
			signals["volume"] = "normal volume"
		}
	}

	var bullish, bearish int
	for _, v := range signals {
		if strings.Contains(v, "bullish") || strings.Contains(v, "bounce") {
			bullish++
		}
		if strings.Contains(v, "bearish") || strings.Contains(v, "reversal") {
			bearish++
		}
	}

	total := len(signals)
	if total == 0 {
		signals["overall"] = "insufficient data"
		signals["confidence"] = "0"
		return signals
	}

	switch {
	case bullish > bearish:
		signals["overall"] = "bullish"
	case bearish > bullish:
		signals["overall"] = "bearish"
	default:
		signals["overall"] = "neutral"
	}
	strongest := bullish
	if bearish > strongest {
		strongest = bearish
	}
	signals["confidence"] = fmt.Sprintf("%.1f", float64(strongest)/float64(total)*100)

	return signals
}
