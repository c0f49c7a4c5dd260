// Package view renders entities into a JSON-serializable node tree that the
// thin client draws verbatim. Everything in here is a pure function of its
// inputs.
package view

// Node is one element of the rendered UI tree.
type Node struct {
	Tag      string            `json:"tag"`
	Class    string            `json:"class,omitempty"`
	Text     string            `json:"text,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Children []Node            `json:"children,omitempty"`
}

func el(tag, class string, children ...Node) Node {
	return Node{Tag: tag, Class: class, Children: children}
}

func text(tag, class, value string) Node {
	return Node{Tag: tag, Class: class, Text: value}
}
