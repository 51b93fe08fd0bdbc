package rtofs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
)

// A Rename is one planned file move.
type Rename struct {
	From string
	To   string
}

// A RenamePlan is the outcome of scanning a cycle directory: the moves to
// make, the steps that were expected but absent, and any archive present as
// only half of its .a/.b pair.
type RenamePlan struct {
	Renames      []Rename
	MissingSteps []string
	BrokenPairs  []string
}

// PlanRenames scans dir for published RTOFS archive names from the cycle of
// cycleDate and plans their date-stamped renames. Both halves of an .a/.b
// pair move together; a step with only one half present is reported broken
// and left alone. Absent forecast hours are reported, not fatal: the
// upstream regularly publishes them late.
func PlanRenames(dir string, cycleDate time.Time) (*RenamePlan, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	byStep := map[string]map[string]ArchiveName{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		an, err := ParseArchiveName(e.Name())
		if err != nil {
			continue
		}
		if byStep[an.Step] == nil {
			byStep[an.Step] = map[string]ArchiveName{}
		}
		byStep[an.Step][an.Ext] = an
	}

	plan := &RenamePlan{}
	for _, step := range ExpectedSteps() {
		exts, ok := byStep[step]
		if !ok {
			plan.MissingSteps = append(plan.MissingSteps, step)
			continue
		}
		if len(exts) != 2 {
			plan.BrokenPairs = append(plan.BrokenPairs, step)
			continue
		}
		for _, ext := range []string{"a", "b"} {
			an := exts[ext]
			from := an.publishedName()
			plan.Renames = append(plan.Renames, Rename{
				From: filepath.Join(dir, from),
				To:   filepath.Join(dir, an.Stamped(cycleDate)),
			})
		}
	}

	sort.Slice(plan.Renames, func(i, j int) bool {
		return plan.Renames[i].To < plan.Renames[j].To
	})

	return plan, nil
}

func (an ArchiveName) publishedName() string {
	return fmt.Sprintf("rtofs_glo.t%02dz.%s.archv.%s", an.CycleHour, an.Step, an.Ext)
}

// Apply performs the planned renames. The first failure aborts: a half
// applied plan is easy to re-run, a silently partial one is not.
func (p *RenamePlan) Apply() error {
	for _, r := range p.Renames {
		log.Info().Str("from", filepath.Base(r.From)).Str("to", filepath.Base(r.To)).Msg("rename")
		if err := os.Rename(r.From, r.To); err != nil {
			return err
		}
	}
	return nil
}
