package codegen

import (
	"fmt"
	"io"
	"strings"
)

// WriteCMake emits the build snippet for a generated bridge: one
// find_package per ROS message package, an ament dependency line and the
// generated handler sources registered on the target.
func WriteCMake(w io.Writer, target string, msgPackages []string, sources []string) error {
	var b strings.Builder
	for _, pkg := range msgPackages {
		fmt.Fprintf(&b, "find_package(%s REQUIRED)\n", pkg)
	}
	fmt.Fprintf(&b, "ament_target_dependencies(%s %s)\n", target, strings.Join(msgPackages, " "))
	fmt.Fprintf(&b, "target_sources(%s PUBLIC\n", target)
	for _, src := range sources {
		fmt.Fprintf(&b, "    ${CMAKE_CURRENT_LIST_DIR}/%s\n", src)
	}
	b.WriteString(")\n")

	_, err := io.WriteString(w, b.String())
	return err
}
