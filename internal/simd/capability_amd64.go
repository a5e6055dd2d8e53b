//go:build amd64 && !noasm

package simd

import "golang.org/x/sys/cpu"

func init() {
	hasSSE41 = cpu.X86.HasSSE41
	initCapabilities()
}
