// Package compiler turns a bridge configuration and a set of ROS message
// definitions into the full artifact set: the wire schema, its nanopb
// option sidecar, the two generated C++ handler sources and the CMake
// snippet binding them into a build.
//
// Compilation is recursive and memoized per message identity. Each message
// becomes a wire message grouped under its package plus a conversion unit;
// constants routed by the configuration become nested enums. The protocol
// fingerprint is recomputed immediately before every schema emission so
// the handshake value always matches the emitted text.
package compiler
