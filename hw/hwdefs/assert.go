package hwdefs

import "fmt"

// Assert panics with the formatted message when cond is false, but only in
// builds made with the 'debug' tag.
func Assert(cond bool, format string, args ...any) {
	if Debug && !cond {
		panic(fmt.Sprintf("assertion failed: "+format, args...))
	}
}
