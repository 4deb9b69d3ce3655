// Package main provides the CLI entrypoint for pyglue-generator.
//
// pyglue-generator reads C++ headers and writes:
//   - pybind11 binding statements into a marker region of a C++ source file
//   - matching Python stub declarations into a marker region of a .pyi file
//
// Commands: gen | check | dump | watch | policy
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
