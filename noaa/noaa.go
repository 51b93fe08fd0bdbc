// Package noaa provides support for locating and downloading NOAA ocean
// model output: STOFS-2D Global fields from the GESTOFS S3 bucket and
// RTOFS archive files from the NOMADS index pages.
package noaa

import "time"

// Default fetch strategy
var DefaultFetchStrategy = FetchStrategy{
	MaximumRetries: 3,
	RetrySleep:     5 * time.Second,
	FetchTimeout:   5 * time.Minute,
}

// Forecast cycles issued per day by the operational systems.
var DefaultCycles = []string{"00", "06", "12", "18"}

// The STOFS-2D Global parallel experiment on the GESTOFS S3 bucket. The
// bucket serves no directory index so cycles are addressed by convention
// with CycleAt rather than discovered with FetchCycles.
var STOFS2DGlobalSource = DataSource{
	Root:          "https://noaa-gestofs-pds.s3.amazonaws.com/_para4/",
	CyclePrefix:   "stofs_2d_glo.",
	CycleFormat:   "20060102",
	FetchStrategy: DefaultFetchStrategy,
}

// Global RTOFS production output on NOMADS.
var RTOFSGlobalSource = DataSource{
	Root:           "https://nomads.ncep.noaa.gov/pub/data/nccf/com/rtofs/prod/",
	CyclePattern:   `^rtofs\.(?P<year>\d{4})(?P<month>\d{2})(?P<day>\d{2})$`,
	ProductPattern: `^rtofs_glo\.t(?P<runHour>\d{2})z\.(?P<stepId>n00|f\d{2,3})\.archv\.(?P<ext>[ab])$`,
	FetchStrategy:  DefaultFetchStrategy,
	MinProducts:    2,
}

// STOFS-2D field file names within a cycle directory. Two variants of the
// maximum elevation field are published: the bias-corrected CWL file and
// the non-bias-corrected "noanomaly" file.
const (
	MaxeleCWLPattern       = "stofs_2d_glo.t%sz.fields.cwl.maxele.nc"
	MaxeleNoAnomalyPattern = "stofs_2d_glo.t%sz.fields.cwl.maxele.noanomaly.nc"
)
