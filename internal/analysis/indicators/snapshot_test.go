package indicators

import (
	"math"
	"testing"
	"time"

	"opentrade/internal/models"
)

func syntheticCandles(closes []float64) []models.Candle {
	candles := make([]models.Candle, len(closes))
	for i, c := range closes {
		candles[i] = models.Candle{
			Date:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Open:   c - 0.5,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000 + int64(i)*10,
		}
	}
	return candles
}

func TestSMAKnownValues(t *testing.T) {
	candles := syntheticCandles([]float64{1, 2, 3, 4, 5})
	values, err := SMA(candles, 3)
	if err != nil {
		t.Fatalf("SMA: %v", err)
	}
	if !math.IsNaN(values[0]) || !math.IsNaN(values[1]) {
		t.Errorf("expected NaN warmup, got %v %v", values[0], values[1])
	}
	want := []float64{2, 3, 4}
	for i, w := range want {
		if got := values[i+2]; math.Abs(got-w) > 1e-9 {
			t.Errorf("sma[%d] = %v, want %v", i+2, got, w)
		}
	}
}

func TestRSIAllGainsIsHundred(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	values, err := RSI(syntheticCandles(closes), 14)
	if err != nil {
		t.Fatalf("RSI: %v", err)
	}
	last := values[len(values)-1]
	if math.Abs(last-100) > 1e-9 {
		t.Errorf("monotonic rising series should give RSI 100, got %v", last)
	}
}

func TestComputeInsufficientHistoryOmitsKeys(t *testing.T) {
	snapshot := Compute(syntheticCandles([]float64{100, 101, 102}))
	for _, key := range []string{"sma_20", "rsi", "macd", "bb_upper", "atr"} {
		if _, ok := snapshot[key]; ok {
			t.Errorf("key %q should be absent with 3 candles", key)
		}
	}
	if _, ok := snapshot["current_price"]; !ok {
		t.Error("current_price should always be present")
	}
}

func TestComputeEmptySeries(t *testing.T) {
	snapshot := Compute(nil)
	if len(snapshot) != 0 {
		t.Errorf("empty series should yield empty snapshot, got %v", snapshot)
	}
}

func TestComputeFullHistory(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + 5*math.Sin(float64(i)/5)
	}
	snapshot := Compute(syntheticCandles(closes))
	for _, key := range []string{
		"sma_20", "sma_50", "ema_12", "ema_26", "rsi",
		"macd", "macd_signal", "macd_histogram",
		"bb_upper", "bb_middle", "bb_lower", "atr",
		"stoch_k", "stoch_d", "obv",
		"current_price", "price_change_pct", "avg_volume", "volume_trend",
	} {
		if _, ok := snapshot[key]; !ok {
			t.Errorf("key %q missing from full-history snapshot", key)
		}
	}
}

func TestSignalSummaryOverallLean(t *testing.T) {
	signals := SignalSummary(map[string]float64{
		"rsi":           25,
		"macd":          1.2,
		"macd_signal":   0.8,
		"current_price": 110,
		"sma_20":        100,
		"sma_50":        95,
		"bb_upper":      120,
		"bb_lower":      90,
		"volume_trend":  1.0,
	})
	if signals["overall"] != "bullish" {
		t.Errorf("overall = %q, want bullish", signals["overall"])
	}
	if signals["rsi"] != "oversold (bullish)" {
		t.Errorf("rsi = %q", signals["rsi"])
	}
}

func TestSignalSummaryEmptySnapshot(t *testing.T) {
	signals := SignalSummary(map[string]float64{})
	if signals["overall"] != "insufficient data" {
		t.Errorf("overall = %q, want insufficient data", signals["overall"])
	}
}
