package rtofs

import (
	"io"

	"github.com/pkg/errors"
)

// CopyRecords copies the given record slabs, in the order given, from a
// ".a" archive to dst. Used to reorder an archive or cut it down to the
// records a tool needs.
func CopyRecords(src io.ReadSeeker, dst io.Writer, records []*Record) error {
	for _, rec := range records {
		if _, err := src.Seek(rec.Offset, io.SeekStart); err != nil {
			return errors.Wrapf(err, "seeking to %q", rec.Field)
		}
		if _, err := io.CopyN(dst, src, rec.Extent); err != nil {
			return errors.Wrapf(err, "copying %q", rec.Field)
		}
	}
	return nil
}
