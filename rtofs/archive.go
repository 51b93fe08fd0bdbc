// HYCOM archive inventories.

package rtofs

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/mansurjisan/My-Scripts/noaa"
)

// HYCOM model days count from the end of 1900.
var hycomEpoch = time.Date(1900, 12, 31, 0, 0, 0, 0, time.UTC)

// Records in a ".a" file are real*4 grids padded out to a multiple of 4096
// words.
const recordPad = 4096

// A Record is one 2-D field slab in an archive, described by a line of the
// ".b" inventory. Offset and Extent locate the slab in the ".a" companion.
type Record struct {
	Field    string
	TimeStep int
	ModelDay float64
	Layer    int
	Density  float64
	Min, Max float64
	Offset   int64
	Extent   int64
}

// Valid returns the field's valid time.
func (r *Record) Valid() time.Time {
	return hycomEpoch.Add(time.Duration(r.ModelDay * 24 * float64(time.Hour)))
}

// An Inventory is the parsed ".b" side of an archive pair.
type Inventory struct {
	IDM     int // longitudinal array size
	JDM     int // latitudinal array size
	Records []*Record
}

// ParseInventory reads a ".b" inventory. The free-text header is scanned
// for the idm/jdm grid sizes; record lines follow the "field" column
// header. Record extents in the ".a" companion are computed from the grid
// size, so idm/jdm must appear before the first record.
func ParseInventory(stream io.Reader) (*Inventory, error) {
	inv := &Inventory{}
	inRecords := false
	var offset int64

	scanner := bufio.NewScanner(stream)
	for scanner.Scan() {
		line := scanner.Text()

		if !inRecords {
			switch {
			case strings.Contains(line, "'idm   '"):
				v, err := headerValue(line)
				if err != nil {
					return nil, err
				}
				inv.IDM = v
			case strings.Contains(line, "'jdm   '"):
				v, err := headerValue(line)
				if err != nil {
					return nil, err
				}
				inv.JDM = v
			case strings.HasPrefix(strings.TrimSpace(line), "field "):
				if inv.IDM == 0 || inv.JDM == 0 {
					return nil, errors.New("inventory records start before idm/jdm sizes")
				}
				inRecords = true
			}
			continue
		}

		rec, err := parseRecordLine(line)
		if err != nil {
			return nil, err
		}

		rec.Offset = offset
		rec.Extent = inv.recordExtent()
		offset += rec.Extent

		inv.Records = append(inv.Records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if !inRecords {
		return nil, errors.New("no record section in inventory")
	}

	return inv, nil
}

// recordExtent is the padded byte size of one field slab.
func (inv *Inventory) recordExtent() int64 {
	words := int64(inv.IDM) * int64(inv.JDM)
	padded := (words + recordPad - 1) / recordPad * recordPad
	return padded * 4
}

// Spans converts records to the byte ranges holding them, for ranged
// fetches of the ".a" companion.
func Spans(records []*Record) []noaa.ByteSpan {
	spans := make([]noaa.ByteSpan, len(records))
	for i, r := range records {
		spans[i] = noaa.ByteSpan{Offset: r.Offset, Extent: r.Extent}
	}
	return spans
}

// headerValue parses the leading integer of a header line like
//
//	  4500    'idm   ' = longitudinal array size
func headerValue(line string) (int, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0, errors.Errorf("malformed inventory header: %q", line)
	}
	v, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, errors.Wrapf(err, "malformed inventory header: %q", line)
	}
	return v, nil
}

// parseRecordLine parses a record line like
//
//	montg1   =      35940  11688.00   0 34.000   -2.2071354E+01   3.1093992E+01
func parseRecordLine(line string) (*Record, error) {
	name, rest, found := strings.Cut(line, "=")
	if !found {
		return nil, errors.Errorf("malformed inventory record: %q", line)
	}

	fields := strings.Fields(rest)
	if len(fields) < 6 {
		return nil, errors.Errorf("inventory record has too few fields: %q", line)
	}

	rec := &Record{Field: strings.TrimSpace(name)}

	var err error
	if rec.TimeStep, err = strconv.Atoi(fields[0]); err != nil {
		return nil, errors.Wrapf(err, "record %q", rec.Field)
	}
	if rec.ModelDay, err = strconv.ParseFloat(fields[1], 64); err != nil {
		return nil, errors.Wrapf(err, "record %q", rec.Field)
	}
	if rec.Layer, err = strconv.Atoi(fields[2]); err != nil {
		return nil, errors.Wrapf(err, "record %q", rec.Field)
	}
	if rec.Density, err = strconv.ParseFloat(fields[3], 64); err != nil {
		return nil, errors.Wrapf(err, "record %q", rec.Field)
	}
	if rec.Min, err = strconv.ParseFloat(fields[4], 64); err != nil {
		return nil, errors.Wrapf(err, "record %q", rec.Field)
	}
	if rec.Max, err = strconv.ParseFloat(fields[5], 64); err != nil {
		return nil, errors.Wrapf(err, "record %q", rec.Field)
	}

	return rec, nil
}
