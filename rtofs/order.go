package rtofs

import (
	"sort"
	"time"
)

// Support for ordering and filtering inventories into the record order the
// conversion tools expect: surface fields first, then layered fields by
// layer, all grouped by valid time.

// Surface fields and their order ahead of the layered fields.
var surfaceRank = map[string]int{
	"montg1": 0,
	"srfhgt": 1,
	"steric": 2,
	"surflx": 3,
	"salflx": 4,
	"bl_dpth": 5,
	"mix_dpth": 6,
}

type orderedRecord struct {
	Record *Record
	Valid  time.Time
	Rank   int

	// Only true for fields the conversion tools accept.
	IsValid bool
}

func toOrdered(rec *Record) *orderedRecord {
	or := &orderedRecord{Record: rec, Valid: rec.Valid()}

	if rank, ok := surfaceRank[rec.Field]; ok {
		or.Rank = rank
		or.IsValid = rec.Layer == 0
		return or
	}

	// Layered fields sort after every surface field.
	or.Rank = len(surfaceRank)
	or.IsValid = rec.Layer > 0
	return or
}

type byConversionOrder []*orderedRecord

func (a byConversionOrder) Len() int      { return len(a) }
func (a byConversionOrder) Swap(i, j int) { a[i], a[j] = a[j], a[i] }
func (a byConversionOrder) Less(i, j int) bool {
	i1, i2 := a[i], a[j]

	if i1.IsValid {
		// Invalid records sort after valid ones always.
		if !i2.IsValid {
			return true
		}
	} else {
		return false
	}

	if !i1.Valid.Equal(i2.Valid) {
		return i1.Valid.Before(i2.Valid)
	}
	if i1.Rank != i2.Rank {
		return i1.Rank < i2.Rank
	}
	if i1.Record.Layer != i2.Record.Layer {
		return i1.Record.Layer < i2.Record.Layer
	}
	return i1.Record.Field < i2.Record.Field
}

// SurfaceRecords returns just the surface fields of the inventory, in
// conversion order. The surface slabs are a small fraction of an archive,
// so fetching only them saves most of the transfer.
func SurfaceRecords(inv *Inventory) []*Record {
	out := []*Record{}
	for _, rec := range ConversionOrder(inv) {
		if _, ok := surfaceRank[rec.Field]; ok {
			out = append(out, rec)
		}
	}
	return out
}

// ConversionOrder returns the inventory's records sorted into conversion
// order with unrecognised records dropped.
func ConversionOrder(inv *Inventory) []*Record {
	ordered := []*orderedRecord{}
	for _, rec := range inv.Records {
		ordered = append(ordered, toOrdered(rec))
	}
	sort.Sort(byConversionOrder(ordered))

	out := []*Record{}
	for _, or := range ordered {
		if or.IsValid {
			out = append(out, or.Record)
		}
	}
	return out
}
