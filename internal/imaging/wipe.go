package imaging

import "fmt"

// WipePass is one overwrite of the whole device: either a stream
// source (/dev/zero, /dev/urandom) or a repeated fill byte.
type WipePass struct {
	Source  string // dd input device; empty for pattern passes
	Pattern byte   // fill byte when Source is empty
	Label   string // shown in the operation title
}

// WipeScheme is a named sequence of passes.
type WipeScheme struct {
	Name   string
	Passes []WipePass
}

var (
	zeroPass   = WipePass{Source: "/dev/zero", Label: "zeros"}
	randomPass = WipePass{Source: "/dev/urandom", Label: "random"}
)

func patternPass(b byte) WipePass {
	return WipePass{Pattern: b, Label: fmt.Sprintf("pattern 0x%02X", b)}
}

// WipeSchemes lists the supported schemes in menu order.
var WipeSchemes = []WipeScheme{
	{
		Name:   "Zero Fill (1 pass) - Fast, good for non-sensitive data",
		Passes: []WipePass{zeroPass},
	},
	{
		Name:   "Random Data (1 pass) - Fast, better security than zeros",
		Passes: []WipePass{randomPass},
	},
	{
		Name:   "DoD 5220.22-M (3 passes) - US DoD standard",
		Passes: []WipePass{randomPass, patternPass(0xFF), randomPass},
	},
	{
		Name:   "Random Data (7 passes) - High security, slower",
		Passes: repeatPass(randomPass, 7),
	},
	{
		Name:   "Gutmann (35 passes) - Maximum security, very slow",
		Passes: gutmannPasses(),
	},
}

func repeatPass(p WipePass, n int) []WipePass {
	passes := make([]WipePass, n)
	for i := range passes {
		passes[i] = p
	}
	return passes
}

// gutmannPasses builds the simplified Gutmann schedule: four random
// passes, 27 fixed fill patterns, four more random passes.
func gutmannPasses() []WipePass {
	patterns := []byte{
		0x55, 0xAA, 0x92, 0x49, 0x24, 0x00, 0x11, 0x22, 0x33,
		0x44, 0x55, 0x66, 0x77, 0x88, 0x99, 0xAA, 0xBB, 0xCC,
		0xDD, 0xEE, 0xFF, 0x92, 0x49, 0x24, 0x6D, 0xB6, 0xDB,
	}
	passes := make([]WipePass, 0, 35)
	passes = append(passes, repeatPass(randomPass, 4)...)
	for _, b := range patterns {
		passes = append(passes, patternPass(b))
	}
	return append(passes, repeatPass(randomPass, 4)...)
}

// WipeCommand builds the shell command for one pass. Pattern passes
// rewrite the zero stream through tr before it reaches dd.
func WipeCommand(pass WipePass, device, blockSize, extra string) string {
	if pass.Source != "" {
		return fmt.Sprintf("dd if=%s of=%q %s", pass.Source, device, ddOptions(blockSize, extra))
	}
	return fmt.Sprintf(`tr '\000' '\%03o' < /dev/zero | dd of=%q %s`,
		pass.Pattern, device, ddOptions(blockSize, extra))
}
