//go:build debug

package hwdefs

// Debug reports whether contract assertions are enabled.
const Debug = true
