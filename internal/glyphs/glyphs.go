// Package glyphs maps display glyph names to their Unicode or ASCII
// form, depending on terminal capability.
package glyphs

// glyphMap holds unicode and ASCII fallback mappings
var glyphMap = map[string][2]string{
	// [unicode, fallback]
	"complete": {"█", "#"},
	"writing":  {"▒", "="},
	"pending":  {"·", "."},
	"error":    {"X", "X"},
	"filled":   {"█", "#"},
	"empty":    {"·", "."},
	"rule":     {"─", "-"},
	"pointer":  {"▶ ", "> "},
	"bullet":   {"•", "*"},
	"warning":  {"⚠", "!"},
}

var asciiOnly bool

// SetASCIIOnly sets the global ASCII fallback state
func SetASCIIOnly(ascii bool) {
	asciiOnly = ascii
}

// IsASCIIOnly returns the current ASCII fallback state
func IsASCIIOnly() bool {
	return asciiOnly
}

// Get returns the glyph for a key, or "?" for unknown keys
func Get(key string) string {
	if mapping, exists := glyphMap[key]; exists {
		if asciiOnly {
			return mapping[1]
		}
		return mapping[0]
	}
	return "?"
}
