package evtc

import (
	"archive/zip"
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// SupportedRevision is the only record layout the decoder understands.
const SupportedRevision = 1

const (
	agentNameSize = 68
	skillNameSize = 64
	recordSize    = 64

	// maxPrealloc caps slice capacity taken from header counts.
	maxPrealloc = 1024
)

type rawHeader struct {
	Version       [12]byte
	Revision      uint8
	BossSpeciesID uint16
	_             uint8
}

type rawAgent struct {
	Address       uint64
	Profession    uint32
	Elite         uint32
	Toughness     int16
	Concentration int16
	Healing       int16
	Condition     int16
	HitboxWidth   int16
	HitboxHeight  int16
	Name          [agentNameSize]byte
}

type rawSkill struct {
	ID   int32
	Name [skillNameSize]byte
}

// Open decodes a log file. Zipped logs (.zevtc) are unpacked transparently.
func Open(path string) (*Log, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(data, []byte("PK")) {
		data, err = unzipFirst(data)
		if err != nil {
			return nil, fmt.Errorf("unzip %s: %w", path, err)
		}
	}
	log, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return log, nil
}

func unzipFirst(data []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	if len(zr.File) == 0 {
		return nil, errors.New("empty archive")
	}
	rc, err := zr.File[0].Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Decode reads a revision 1 log from r.
func Decode(r io.Reader) (*Log, error) {
	br := bufio.NewReader(r)
	le := binary.LittleEndian

	var header rawHeader
	if err := binary.Read(br, le, &header); err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	if header.Revision != SupportedRevision {
		return nil, fmt.Errorf("unsupported revision %d", header.Revision)
	}
	log := &Log{
		BuildVersion:  cString(header.Version[:]),
		Revision:      header.Revision,
		BossSpeciesID: header.BossSpeciesID,
	}

	var agentCount int32
	if err := binary.Read(br, le, &agentCount); err != nil {
		return nil, fmt.Errorf("agent count: %w", err)
	}
	if agentCount < 0 {
		return nil, fmt.Errorf("negative agent count %d", agentCount)
	}
	log.Agents = make([]Agent, 0, min(agentCount, maxPrealloc))
	for i := int32(0); i < agentCount; i++ {
		var raw rawAgent
		if err := binary.Read(br, le, &raw); err != nil {
			return nil, fmt.Errorf("agent %d: %w", i, err)
		}
		log.Agents = append(log.Agents, Agent{
			Address:       raw.Address,
			Profession:    raw.Profession,
			Elite:         raw.Elite,
			Toughness:     raw.Toughness,
			Concentration: raw.Concentration,
			Healing:       raw.Healing,
			Condition:     raw.Condition,
			HitboxWidth:   raw.HitboxWidth,
			HitboxHeight:  raw.HitboxHeight,
			Name:          trimNUL(raw.Name[:]),
		})
	}

	var skillCount int32
	if err := binary.Read(br, le, &skillCount); err != nil {
		return nil, fmt.Errorf("skill count: %w", err)
	}
	if skillCount < 0 {
		return nil, fmt.Errorf("negative skill count %d", skillCount)
	}
	log.Skills = make([]Skill, 0, min(skillCount, maxPrealloc))
	for i := int32(0); i < skillCount; i++ {
		var raw rawSkill
		if err := binary.Read(br, le, &raw); err != nil {
			return nil, fmt.Errorf("skill %d: %w", i, err)
		}
		log.Skills = append(log.Skills, Skill{ID: raw.ID, Name: cString(raw.Name[:])})
	}

	// Records run to the end of input; a trailing partial record is ignored.
	buf := make([]byte, recordSize)
	for {
		if _, err := io.ReadFull(br, buf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return nil, fmt.Errorf("record %d: %w", len(log.Records), err)
		}
		var rec CombatRecord
		if err := binary.Read(bytes.NewReader(buf), le, &rec); err != nil {
			return nil, fmt.Errorf("record %d: %w", len(log.Records), err)
		}
		log.Records = append(log.Records, rec)
	}
	return log, nil
}

// Encode writes log in the revision 1 layout. Used to build fixtures.
func Encode(w io.Writer, log *Log) error {
	le := binary.LittleEndian
	header := rawHeader{Revision: SupportedRevision, BossSpeciesID: log.BossSpeciesID}
	copy(header.Version[:], log.BuildVersion)
	if err := binary.Write(w, le, header); err != nil {
		return err
	}
	if err := binary.Write(w, le, int32(len(log.Agents))); err != nil {
		return err
	}
	for _, a := range log.Agents {
		raw := rawAgent{
			Address:       a.Address,
			Profession:    a.Profession,
			Elite:         a.Elite,
			Toughness:     a.Toughness,
			Concentration: a.Concentration,
			Healing:       a.Healing,
			Condition:     a.Condition,
			HitboxWidth:   a.HitboxWidth,
			HitboxHeight:  a.HitboxHeight,
		}
		copy(raw.Name[:], a.Name)
		if err := binary.Write(w, le, raw); err != nil {
			return err
		}
	}
	if err := binary.Write(w, le, int32(len(log.Skills))); err != nil {
		return err
	}
	for _, s := range log.Skills {
		raw := rawSkill{ID: s.ID}
		copy(raw.Name[:], s.Name)
		if err := binary.Write(w, le, raw); err != nil {
			return err
		}
	}
	for _, rec := range log.Records {
		if err := binary.Write(w, le, rec); err != nil {
			return err
		}
	}
	return nil
}

// cString cuts at the first NUL.
func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// trimNUL keeps interior NULs, which separate character, account and
// subgroup in player names.
func trimNUL(b []byte) string {
	return strings.Trim(string(b), "\x00")
}
