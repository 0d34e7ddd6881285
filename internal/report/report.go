// Package report renders damage distributions and sweep results as text
// tables and CSV.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"gw2-resim/internal/engine"
	"gw2-resim/internal/sweep"
)

// NameFunc names a skill, buff or condition id.
type NameFunc func(id uint32) string

func printer() *message.Printer {
	return message.NewPrinter(language.English)
}

// tabWriter creates a tab-aligned writer for consistent table output.
func tabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// Breakdown prints per-source damage, highest first, with its share of the
// total.
func Breakdown(w io.Writer, dist *engine.DamageDistribution, names NameFunc) error {
	p := printer()
	tw := tabWriter(w)
	fmt.Fprintf(tw, "Source\tID\tDamage\tShare\n")
	for _, row := range dist.Sorted() {
		share := 0.0
		if dist.Total != 0 {
			share = 100 * float64(row.Damage) / float64(dist.Total)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%.2f%%\n", names(row.ID), row.ID, p.Sprintf("%d", row.Damage), share)
	}
	fmt.Fprintf(tw, "Total\t\t%s\t\n", p.Sprintf("%d", dist.Total))
	if dist.Duration > 0 {
		fmt.Fprintf(tw, "DPS\t\t%s\t\n", p.Sprintf("%.1f", dist.DPS()))
	}
	return tw.Flush()
}

// Results prints up to top results. Differences are relative to baseline
// when it is non-nil.
func Results(w io.Writer, results []sweep.Result, top int, baseline *sweep.Result) error {
	p := printer()
	tw := tabWriter(w)
	if baseline != nil {
		fmt.Fprintf(tw, "Rank\tCandidate\tTotal\tvs Baseline\n")
	} else {
		fmt.Fprintf(tw, "Rank\tCandidate\tTotal\n")
	}
	if top <= 0 || top > len(results) {
		top = len(results)
	}
	for i, res := range results[:top] {
		if baseline != nil {
			diff := res.Total - baseline.Total
			pct := 0.0
			if baseline.Total != 0 {
				pct = 100 * float64(diff) / float64(baseline.Total)
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s (%+.2f%%)\n", i+1, res.Candidate, p.Sprintf("%d", res.Total), p.Sprintf("%+d", diff), pct)
		} else {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, res.Candidate, p.Sprintf("%d", res.Total))
		}
	}
	return tw.Flush()
}

var csvHeader = []string{
	"index", "chest", "expertise_infusions", "condition_infusions", "preset",
	"set1_slot1", "set1_slot2", "set2_slot1", "set2_slot2", "total", "fingerprint",
}

// WriteCSV writes every result to w, one row per candidate.
func WriteCSV(w io.Writer, results []sweep.Result) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, res := range results {
		c := res.Candidate
		record := []string{
			strconv.Itoa(c.Index),
			string(c.Chest),
			strconv.Itoa(c.ExpertiseInfusions),
			strconv.Itoa(c.ConditionInfusions),
			string(c.Preset),
			c.Replacements[0][0].String(),
			c.Replacements[0][1].String(),
			c.Replacements[1][0].String(),
			c.Replacements[1][1].String(),
			strconv.FormatInt(res.Total, 10),
			strconv.FormatUint(res.Fingerprint, 16),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// WriteCSVFile writes results to path, creating its directory.
func WriteCSVFile(path string, results []sweep.Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	if err := WriteCSV(file, results); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
