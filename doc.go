// Package pathlibfs provides a pathlib-flavored path value over
// heterogeneous storage backends. The same Path type addresses local files,
// S3-compatible object stores, Google Cloud Storage and anything else with a
// registered backend, and supports the same algebra everywhere: Join,
// Parent, Name, Suffix, Match, RelativeTo.
//
//	p, err := pathlibfs.New("s3://bucket/data/report.csv")
//	p.Name()            // "report.csv"
//	p.Suffix()          // ".csv"
//	p.Parent().Path()   // "bucket/data"
//	p.Join("..", "x")   // algebra never touches the network
//
// Paths on different protocols move data through the strategy that fits:
// uploads for local sources, downloads for local destinations, native
// copies within one backend, and a scoped temporary staging directory
// between two different remote protocols.
//
//	src, _ := pathlibfs.New("/tmp/report.csv")
//	dst, _ := pathlibfs.New("gs://bucket/report.csv")
//	err := src.Copy(dst, core.TransferOptions{})
//
// The local "file" protocol is always available. Other protocols are
// enabled by importing their backend package for its registration side
// effect:
//
//	import (
//	    _ "github.com/roy-ht/pathlibfs/gcs"
//	    _ "github.com/roy-ht/pathlibfs/s3"
//	)
//
// Local hierarchical paths and flat object-store keys follow different
// rules where they must: local paths normalize "." and ".." and track
// absolute versus relative, object keys preserve their spelling and are
// always absolute in their namespace. The per-operation documentation notes
// the differences.
package pathlibfs
