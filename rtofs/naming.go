// Package rtofs handles RTOFS archive files on disk: the date-stamped
// naming convention, HYCOM ".b" inventories and their ".a" binary
// companions, and the external conversion tools run against them.
package rtofs

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

var archiveNameRegexp = regexp.MustCompile(
	`^rtofs_glo\.t(?P<runHour>\d{2})z\.(?P<stepId>n00|f\d{2,3})\.archv\.(?P<ext>[ab])$`)

// An ArchiveName is a parsed RTOFS archive file name as published on
// NOMADS, e.g. "rtofs_glo.t00z.f24.archv.a".
type ArchiveName struct {
	CycleHour int
	Step      string // "n00" or "fNN"/"fNNN"
	Ext       string // "a" or "b"
}

// ParseArchiveName parses a published archive file name.
func ParseArchiveName(name string) (ArchiveName, error) {
	m := archiveNameRegexp.FindStringSubmatch(name)
	if m == nil {
		return ArchiveName{}, errors.Errorf("not an RTOFS archive name: %q", name)
	}

	hour, err := strconv.Atoi(m[1])
	if err != nil {
		return ArchiveName{}, err
	}

	return ArchiveName{CycleHour: hour, Step: m[2], Ext: m[3]}, nil
}

// Offset returns the forecast offset the step identifier encodes: zero for
// the nowcast, the forecast hour otherwise.
func (an ArchiveName) Offset() time.Duration {
	if an.Step == "n00" {
		return 0
	}
	h, _ := strconv.Atoi(an.Step[1:])
	return time.Duration(h) * time.Hour
}

// ValidDate returns the date the archive's fields are valid for, given the
// date of the cycle that produced it.
func (an ArchiveName) ValidDate(cycleDate time.Time) time.Time {
	return cycleDate.UTC().Add(an.Offset())
}

// Stamped returns the date-stamped name the archive is filed under once the
// forecast offset has been folded into the date:
//
//	rtofs_glo.t00z.f24.archv.a  (cycle 20251122)
//	  -> rtofs_glo.t00z.n00.archv.20251123.a
func (an ArchiveName) Stamped(cycleDate time.Time) string {
	valid := an.ValidDate(cycleDate)
	return fmt.Sprintf("rtofs_glo.t%02dz.n00.archv.%s.%s",
		an.CycleHour, valid.Format("20060102"), an.Ext)
}

// ExpectedSteps is the step set a complete daily cycle publishes: the
// nowcast plus forecast archives every 24 hours out to 8 days.
func ExpectedSteps() []string {
	steps := []string{"n00"}
	for h := 24; h <= 192; h += 24 {
		steps = append(steps, fmt.Sprintf("f%d", h))
	}
	return steps
}
