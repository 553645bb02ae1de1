package compiler

import (
	"bytes"
	"context"
	"fmt"

	"github.com/bufbuild/protocompile"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// verifyFilename is the virtual path the emitted schema compiles under.
const verifyFilename = "protobridge.proto"

// Verify compiles the emitted schema with a real protobuf front end. This
// catches anything the construction-time checks do not model, field number
// collisions in particular, before the artifacts are written out.
func (g *Generator) Verify(ctx context.Context) error {
	var buf bytes.Buffer
	if err := g.WriteProto(&buf); err != nil {
		return err
	}

	comp := protocompile.Compiler{
		Resolver: protocompile.WithStandardImports(&protocompile.SourceResolver{
			Accessor: protocompile.SourceAccessorFromMap(map[string]string{
				verifyFilename: buf.String(),
			}),
		}),
	}
	files, err := comp.Compile(ctx, verifyFilename)
	if err != nil {
		return fmt.Errorf("generated schema does not compile: %w", err)
	}

	fd := files.FindFileByPath(verifyFilename)
	if fd == nil {
		return fmt.Errorf("generated schema missing from compile result")
	}
	if fd.Messages().ByName(protoreflect.Name("comm_msg")) == nil {
		return fmt.Errorf("generated schema missing comm_msg")
	}
	return nil
}
