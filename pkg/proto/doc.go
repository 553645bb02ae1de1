// Package proto models the firmware wire schema as a mutable tree of
// scope, message, oneof, enum, extension and field declarations, and
// serializes it to proto3 source text plus a nanopb option sidecar.
//
// Construction operations validate identifiers and sibling uniqueness up
// front, so a schema that was built without errors always serializes.
package proto
