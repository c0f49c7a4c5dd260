package view

import (
	"fmt"
	"strings"

	"taskboard/domain"
)

// RenderContactList projects the address book into the grouped list view.
// Contacts are expected pre-sorted by the cache comparator; group headers
// are the uppercase first letter of each name. The signed-in user's own
// contact is suffixed with "(you)".
func RenderContactList(contacts []domain.Contact, currentEmail string) Node {
	list := Node{Tag: "div", Class: "contact-list"}
	lastLetter := ""
	for _, c := range contacts {
		letter := firstLetter(c.Name)
		if letter != lastLetter {
			list.Children = append(list.Children, text("div", "contact-group-letter", letter))
			lastLetter = letter
		}
		name := c.Name
		if currentEmail != "" && strings.EqualFold(c.Email, currentEmail) {
			name += " (you)"
		}
		list.Children = append(list.Children, Node{
			Tag:   "div",
			Class: "contact-row",
			Attrs: map[string]string{"data-contact-id": c.ID},
			Children: []Node{
				{Tag: "span", Class: "initials-badge", Text: c.Initials, Attrs: map[string]string{"style": "background-color:" + c.IconColor}},
				text("span", "contact-name", name),
				text("span", "contact-email", c.Email),
			},
		})
	}
	return list
}

// RenderSelector projects the assignment dropdown: one row per contact with
// a highlight on the selected ones.
func RenderSelector(contacts []domain.Contact, selected func(id string) bool) Node {
	sel := Node{Tag: "div", Class: "contact-selector"}
	for _, c := range contacts {
		class := "selector-row"
		if selected != nil && selected(c.ID) {
			class += " selected"
		}
		sel.Children = append(sel.Children, Node{
			Tag:   "div",
			Class: class,
			Attrs: map[string]string{"data-contact-id": c.ID},
			Children: []Node{
				{Tag: "span", Class: "initials-badge", Text: c.Initials, Attrs: map[string]string{"style": "background-color:" + c.IconColor}},
				text("span", "contact-name", c.Name),
			},
		})
	}
	return sel
}

// RenderSelectionPreview shows the bounded badge strip below a selector:
// at most badgeCap badges plus the "+N" overflow, same policy as on cards.
func RenderSelectionPreview(selected []domain.Contact) Node {
	strip := Node{Tag: "div", Class: "selection-preview"}
	for i, c := range selected {
		if i == badgeCap {
			break
		}
		strip.Children = append(strip.Children, Node{
			Tag:   "span",
			Class: "initials-badge",
			Text:  c.Initials,
			Attrs: map[string]string{"style": "background-color:" + c.IconColor},
		})
	}
	if extra := len(selected) - badgeCap; extra > 0 {
		strip.Children = append(strip.Children, Node{
			Tag:   "span",
			Class: "initials-badge initials-extra",
			Text:  fmt.Sprintf("+%d", extra),
			Attrs: map[string]string{"style": "background-color:" + overflowBadgeColor},
		})
	}
	return strip
}

func firstLetter(name string) string {
	for _, f := range strings.Fields(name) {
		return strings.ToUpper(string([]rune(f)[0]))
	}
	return "#"
}
