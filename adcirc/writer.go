// NetCDF export of regional subsets.

package adcirc

import (
	"github.com/fhs/go-netcdf/netcdf"
	"github.com/pkg/errors"
)

// WriteSubset writes a regional mesh and one per-node field to a NetCDF
// file with the same variable contract the full-domain files use: x, y,
// element (1-based connectivity) and the named field. Downstream tools,
// including the fort.11 boundary-condition pipeline, consume this layout.
func WriteSubset(path string, s *Subset, fieldName string, field Field) error {
	if len(field) != s.NumNodes() {
		return errors.Errorf("field has %d values for %d nodes", len(field), s.NumNodes())
	}

	ds, err := netcdf.CreateFile(path, netcdf.CLOBBER|netcdf.NETCDF4)
	if err != nil {
		return errors.Wrapf(err, "creating %v", path)
	}
	defer ds.Close()

	nodeDim, err := ds.AddDim("node", uint64(s.NumNodes()))
	if err != nil {
		return err
	}
	neleDim, err := ds.AddDim("nele", uint64(len(s.Elements)))
	if err != nil {
		return err
	}
	nvertexDim, err := ds.AddDim("nvertex", 3)
	if err != nil {
		return err
	}

	xVar, err := ds.AddVar("x", netcdf.DOUBLE, []netcdf.Dim{nodeDim})
	if err != nil {
		return err
	}
	if err := xVar.WriteFloat64s(s.X); err != nil {
		return err
	}

	yVar, err := ds.AddVar("y", netcdf.DOUBLE, []netcdf.Dim{nodeDim})
	if err != nil {
		return err
	}
	if err := yVar.WriteFloat64s(s.Y); err != nil {
		return err
	}

	elemVar, err := ds.AddVar("element", netcdf.INT, []netcdf.Dim{neleDim, nvertexDim})
	if err != nil {
		return err
	}
	flat := make([]int32, 0, len(s.Elements)*3)
	for _, e := range s.Elements {
		flat = append(flat, e[0]+1, e[1]+1, e[2]+1)
	}
	if err := elemVar.WriteInt32s(flat); err != nil {
		return err
	}

	fieldVar, err := ds.AddVar(fieldName, netcdf.DOUBLE, []netcdf.Dim{nodeDim})
	if err != nil {
		return err
	}
	return fieldVar.WriteFloat64s(field)
}
