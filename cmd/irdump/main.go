// Command irdump decodes IR signal dumps into bit packets and renders,
// summarises or stores them.
package main

import (
	"os"

	"github.com/banshee-data/irdump/internal/fsutil"
	"github.com/banshee-data/irdump/internal/timeutil"
)

func main() {
	a := &app{fs: fsutil.OSFileSystem{}, clock: timeutil.RealClock{}}
	if err := newRootCmd(a).Execute(); err != nil {
		os.Exit(1)
	}
}
