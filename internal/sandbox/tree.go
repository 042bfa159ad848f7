package sandbox

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// serializes the tree as HTML markup
func (t Tree) HTML() (string, error) {
	var b strings.Builder

	for _, n := range t {
		node, err := n.toHTML()
		if err != nil {
			return "", err
		}

		if err := html.Render(&b, node); err != nil {
			return "", fmt.Errorf("failed to render <%s>: %w", n.Tag, err)
		}
	}

	return b.String(), nil
}

// returns the concatenated text content of the tree
func (t Tree) Text() string {
	var b strings.Builder

	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			if n.IsText() {
				b.WriteString(n.Text)
				continue
			}

			walk(n.Children)
		}
	}

	walk(t)

	return b.String()
}

func (n *Node) IsText() bool {
	return n.Tag == ""
}

func (n *Node) toHTML() (*html.Node, error) {
	if n.IsText() {
		return &html.Node{Type: html.TextNode, Data: n.Text}, nil
	}

	el := &html.Node{
		Type:     html.ElementNode,
		Data:     n.Tag,
		DataAtom: atom.Lookup([]byte(n.Tag)),
	}

	for _, a := range n.Attrs {
		el.Attr = append(el.Attr, html.Attribute{Key: a[0], Val: a[1]})
	}

	if n.InnerHTML != "" {
		fragment, err := html.ParseFragment(strings.NewReader(n.InnerHTML), el)
		if err != nil {
			return nil, fmt.Errorf("failed to parse inner html of <%s>: %w", n.Tag, err)
		}

		for _, child := range fragment {
			el.AppendChild(child)
		}

		return el, nil
	}

	for _, child := range n.Children {
		c, err := child.toHTML()
		if err != nil {
			return nil, err
		}

		el.AppendChild(c)
	}

	return el, nil
}
