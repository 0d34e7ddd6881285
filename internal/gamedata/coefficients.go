package gamedata

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Coefficients holds per-skill power coefficients.
type Coefficients struct {
	power map[uint32]float64
}

// NewCoefficients builds a coefficient table from a map.
func NewCoefficients(power map[uint32]float64) *Coefficients {
	out := make(map[uint32]float64, len(power))
	for id, c := range power {
		out[id] = c
	}
	return &Coefficients{power: out}
}

// Power returns the power coefficient of id.
func (c *Coefficients) Power(id uint32) (float64, bool) {
	if c == nil {
		return 0, false
	}
	v, ok := c.power[id]
	return v, ok
}

// Len returns the number of known skills.
func (c *Coefficients) Len() int {
	if c == nil {
		return 0
	}
	return len(c.power)
}

// LoadCoefficients reads a side table with one "id multiplier" pair per line.
func LoadCoefficients(path string) (*Coefficients, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	c, err := ParseCoefficients(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}

// ParseCoefficients reads the side table format from r. Blank lines and lines
// starting with '#' are skipped.
func ParseCoefficients(r io.Reader) (*Coefficients, error) {
	power := make(map[uint32]float64)
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: expected skill id and multiplier", line)
		}
		id, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: skill id: %w", line, err)
		}
		mult, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: multiplier: %w", line, err)
		}
		power[uint32(id)] = mult
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return &Coefficients{power: power}, nil
}
