package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gw2-resim/internal/engine"
	"gw2-resim/internal/runes"
	"gw2-resim/internal/sweep"
)

func names(id uint32) string {
	return map[uint32]string{736: "bleeding", 737: "burning"}[id]
}

func TestBreakdown(t *testing.T) {
	dist := engine.NewDamageDistribution()
	dist.Add(736, 1_234_567)
	dist.Add(737, 765_433)
	dist.Duration = 100 * time.Second

	var buf bytes.Buffer
	if err := Breakdown(&buf, dist, names); err != nil {
		t.Fatalf("breakdown: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"bleeding", "1,234,567", "61.73%", "2,000,000", "DPS"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "bleeding") > strings.Index(out, "burning") {
		t.Fatalf("rows not ordered by damage:\n%s", out)
	}
}

func results() []sweep.Result {
	return []sweep.Result{
		{Candidate: sweep.Candidate{Index: 3, Chest: runes.ChestSinister, ExpertiseInfusions: 2, ConditionInfusions: 16, Preset: runes.PresetTempest, Replacements: [2][2]runes.Sigil{{runes.SigilMalice}}}, Total: 1100, Fingerprint: 0xbeef},
		{Candidate: sweep.Candidate{Index: 0, Chest: runes.ChestViper, ConditionInfusions: 18, Preset: runes.PresetNightmare}, Total: 1000},
	}
}

func TestResults(t *testing.T) {
	rs := results()
	var buf bytes.Buffer
	if err := Results(&buf, rs, 1, &rs[1]); err != nil {
		t.Fatalf("results: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "+100 (+10.00%)") || !strings.Contains(out, "[malice;keep]") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "nightmare") {
		t.Fatalf("top limit ignored:\n%s", out)
	}

	buf.Reset()
	if err := Results(&buf, rs, 0, nil); err != nil {
		t.Fatalf("results: %v", err)
	}
	if strings.Count(buf.String(), "\n") != 3 || strings.Contains(buf.String(), "Baseline") {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestWriteCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sweep.csv")
	if err := WriteCSVFile(path, results()); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 3 || len(rows[0]) != len(csvHeader) {
		t.Fatalf("unexpected shape %v", rows)
	}
	want := []string{"3", "sinister", "2", "16", "tempest", "malice", "none", "none", "none", "1100", "beef"}
	for i := range want {
		if rows[1][i] != want[i] {
			t.Fatalf("column %s = %q, want %q", csvHeader[i], rows[1][i], want[i])
		}
	}
}
