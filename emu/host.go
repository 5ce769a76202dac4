package emu

import (
	"os"
	"runtime"
	"sync"

	"golang.org/x/term"

	"saturn/emu/log"
)

type HostInfo struct {
	NumCPU           int
	StderrIsTerminal bool
}

// Host returns the capabilities of the machine we run on.
var Host = sync.OnceValue(func() HostInfo {
	return HostInfo{
		NumCPU:           runtime.NumCPU(),
		StderrIsTerminal: term.IsTerminal(int(os.Stderr.Fd())),
	}
})

// SetupLogging enables debug logs for mask, with colors when stderr is a
// terminal.
func SetupLogging(mask log.ModuleMask) {
	log.SetColors(Host().StderrIsTerminal)
	log.EnableDebugModules(mask)
}
