package domain

import "strings"

// TattooStyles is the fixed set of styles a generation request may select.
var TattooStyles = []string{
	"Traditional",
	"Realism",
	"Watercolor",
	"Tribal",
	"New School",
	"Neo Traditional",
	"Japanese",
	"Blackwork",
	"Illustrative",
	"Geometric",
	"Minimalist",
	"Abstract",
	"Dotwork",
	"Sketch",
}

// NormalizeStyle returns the canonical spelling of style, or false when the
// style is not part of TattooStyles.
func NormalizeStyle(style string) (string, bool) {
	style = strings.Join(strings.Fields(style), " ")
	if style == "" {
		return "", false
	}
	for _, s := range TattooStyles {
		if strings.EqualFold(s, style) {
			return s, true
		}
	}
	return "", false
}
