package compiler

import (
	"bytes"
	"crypto/sha1"
	"encoding/binary"
)

// fingerprintPlaceholder is the value both fingerprint options hold while
// the hash is computed, making the pass idempotent.
const fingerprintPlaceholder = 0

// fingerprint recomputes the protocol fingerprint and writes it into the
// protocol_version and msgid options. The hash covers the schema text and
// the option sidecar separated by a NUL byte, so any textual change to
// either artifact changes the connect handshake value.
func (g *Generator) fingerprint() error {
	g.protocolVersion.SetUint32(fingerprintPlaceholder)
	g.nanopbMsgid.SetUint32(fingerprintPlaceholder)

	var buf bytes.Buffer
	if err := g.scope.WriteProto(&buf); err != nil {
		return err
	}
	buf.WriteByte(0)
	if err := g.scope.WriteOptions(&buf); err != nil {
		return err
	}

	sum := sha1.Sum(buf.Bytes())
	value := binary.BigEndian.Uint32(sum[:4])
	g.protocolVersion.SetUint32(value)
	g.nanopbMsgid.SetUint32(value)
	return nil
}
