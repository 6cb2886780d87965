package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"opentrade/internal/models"
)

func testOutput(jsonMode bool) (*Output, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.Flags().Bool("json", jsonMode, "")
	cmd.SetOut(&buf)
	return NewOutput(cmd), &buf
}

func TestOutputJSONMode(t *testing.T) {
	output, buf := testOutput(true)
	if !output.IsJSON() {
		t.Fatal("json mode not detected")
	}
	if err := output.JSON(map[string]string{"ticker": "AAPL"}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if !strings.Contains(buf.String(), `"ticker": "AAPL"`) {
		t.Errorf("output = %q", buf.String())
	}
}

func TestFormatConfidence(t *testing.T) {
	cases := map[float64]string{0: "0%", 0.5: "50%", 0.72: "72%", 1: "100%"}
	for in, want := range cases {
		if got := FormatConfidence(in); got != want {
			t.Errorf("FormatConfidence(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestTableAlignsColumns(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	output, buf := testOutput(false)
	table := NewTable(output, "Ticker", "Signal")
	table.AddRow("AAPL", "bullish")
	table.AddRow("X", "bearish")
	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header + separator + 2 rows", len(lines))
	}
	if !strings.HasPrefix(lines[2], "AAPL    ") {
		t.Errorf("row not padded: %q", lines[2])
	}
	if !strings.HasPrefix(lines[3], "X       ") {
		t.Errorf("short cell not padded to column width: %q", lines[3])
	}
}

func TestStripANSI(t *testing.T) {
	colored := "\x1b[32mbullish\x1b[0m"
	if got := stripANSI(colored); got != "bullish" {
		t.Errorf("stripANSI = %q", got)
	}
}

func TestParseDate(t *testing.T) {
	if _, err := parseDate("2025-13-40"); err == nil {
		t.Error("invalid date accepted")
	}
	date, err := parseDate("2025-07-10")
	if err != nil {
		t.Fatalf("parseDate: %v", err)
	}
	if date.Year() != 2025 || date.Month() != 7 || date.Day() != 10 {
		t.Errorf("parsed date = %v", date)
	}
	zero, err := parseDate("")
	if err != nil || !zero.IsZero() {
		t.Errorf("empty date = %v, %v", zero, err)
	}
}

func TestSignalColors(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	output, _ := testOutput(false)
	if got := output.Signal(models.Bullish); got != "BULLISH" {
		t.Errorf("Signal = %q", got)
	}
	if got := output.Verdict(models.RiskReject); got != "REJECT" {
		t.Errorf("Verdict = %q", got)
	}
}
