// Package mapdata reads and writes the line-oriented map data format that
// describes the CPAN map: maintainers, namespaces and distributions with
// their grid coordinates.
//
// # Format
//
// The format is newline-delimited records of comma-separated fields:
//
//	[META]
//	plane_rows,180
//	zoom_scales,2,3,4,5,6,8,10
//	[MAINTAINERS]
//	GRANTM,Grant McLean,4e8d5b3c
//	[NAMESPACES]
//	XML,3,1f4
//	[DISTRIBUTIONS]
//	XML::Simple,0,0,1a,2b
//
// Sections are introduced by sentinel records whose first field is one of
// [META], [MAINTAINERS], [NAMESPACES] or [DISTRIBUTIONS]. Integer fields
// (indexes, coordinates, mass) are lowercase hexadecimal without a "0x"
// prefix. There is no quoting or escaping: fields never contain a comma or
// a newline.
//
// # Reading
//
// [Reader] produces one [Record] per terminated line. A trailing partial
// line without a newline is discarded, and the reader is a single forward
// pass:
//
//	r := mapdata.NewReader(f)
//	for r.Next() {
//	    rec := r.Record()
//	    ...
//	}
//	if err := r.Err(); err != nil {
//	    return err
//	}
//
// Interpreting sections is the job of the catalog package; this package
// only splits text and recognises section markers.
package mapdata
