// Command castmap supports writing mapping profiles.
//
// It lists the enum types of Go packages as a profile skeleton and validates profiles
// against the packages they refer to.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
