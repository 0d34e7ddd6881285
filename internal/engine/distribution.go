package engine

import (
	"cmp"
	"encoding/binary"
	"slices"
	"time"

	"github.com/cespare/xxhash/v2"
)

// DamageDistribution is the damage of one run keyed by skill, buff or
// condition id.
type DamageDistribution struct {
	BySource map[uint32]int64
	Total    int64
	// Duration is the time of the last replayed event.
	Duration time.Duration
}

// NewDamageDistribution returns an empty distribution.
func NewDamageDistribution() *DamageDistribution {
	return &DamageDistribution{BySource: make(map[uint32]int64)}
}

// Add credits damage to id.
func (d *DamageDistribution) Add(id uint32, damage int64) {
	d.BySource[id] += damage
	d.Total += damage
}

// DPS returns total damage per second over the replayed span.
func (d *DamageDistribution) DPS() float64 {
	if d.Duration <= 0 {
		return 0
	}
	return float64(d.Total) / d.Duration.Seconds()
}

// SourceDamage is one row of a distribution.
type SourceDamage struct {
	ID     uint32
	Damage int64
}

// Sorted returns the rows ordered by damage, highest first, ties by id.
func (d *DamageDistribution) Sorted() []SourceDamage {
	rows := make([]SourceDamage, 0, len(d.BySource))
	for id, dmg := range d.BySource {
		rows = append(rows, SourceDamage{ID: id, Damage: dmg})
	}
	slices.SortFunc(rows, func(a, b SourceDamage) int {
		if c := cmp.Compare(b.Damage, a.Damage); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return rows
}

// Fingerprint digests the per-source damage. Equal distributions have equal
// fingerprints regardless of map order.
func (d *DamageDistribution) Fingerprint() uint64 {
	ids := make([]uint32, 0, len(d.BySource))
	for id := range d.BySource {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	h := xxhash.New()
	var buf [12]byte
	for _, id := range ids {
		binary.LittleEndian.PutUint32(buf[:4], id)
		binary.LittleEndian.PutUint64(buf[4:], uint64(d.BySource[id]))
		h.Write(buf[:])
	}
	binary.LittleEndian.PutUint64(buf[:8], uint64(d.Total))
	h.Write(buf[:8])
	return h.Sum64()
}
