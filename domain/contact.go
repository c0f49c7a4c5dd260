package domain

import "strings"

// Contact is one address book entry. Initials and IconColor are derived
// from the name at creation and re-derived on every rename.
type Contact struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Initials  string `json:"initials"`
	IconColor string `json:"iconColor"`
}

// iconPalette holds the colors used for contact insignia circles.
var iconPalette = []string{
	"#29ABE2", // blue
	"#FF7A00", // orange
	"#2AD300", // green
	"#FF5C5C", // red
	"#6E52FF", // purple
	"#FC71FF", // pink
}

// Initials returns the uppercase first letters of the first two
// space-separated name tokens.
func Initials(name string) string {
	var b strings.Builder
	letters := 0
	for _, word := range strings.Fields(name) {
		r := []rune(word)
		b.WriteString(strings.ToUpper(string(r[0])))
		letters++
		if letters == 2 {
			break
		}
	}
	return b.String()
}

// IconColor picks a palette color deterministically from the name, so a
// contact keeps its color across renders and only changes on rename.
func IconColor(name string) string {
	var hash int32
	for i, r := range []rune(name) {
		hash = (hash << 5) - hash + int32(r)*int32(i+1)
	}
	idx := int(hash) % len(iconPalette)
	if idx < 0 {
		idx = -idx
	}
	return iconPalette[idx]
}

// Derive refreshes the cached display fields from the current name.
func (c *Contact) Derive() {
	c.Initials = Initials(c.Name)
	c.IconColor = IconColor(c.Name)
}
