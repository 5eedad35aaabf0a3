package doctree

// Node is one outline entry and the body text that belongs to its section.
type Node struct {
	Title    string  `json:"title" yaml:"title"`       // Section heading, punctuation-normalized
	Page     int     `json:"page" yaml:"page"`         // One-based start page from the outline
	Content  string  `json:"content" yaml:"content"`   // Filled in by segmentation
	Children []*Node `json:"children" yaml:"children"` // Subsections
}

// Forest is the list of top-level outline nodes.
type Forest []*Node

// Walk visits every node in pre-order. depth is 0 for top-level nodes.
func (f Forest) Walk(fn func(n *Node, depth int)) {
	var walk func(nodes []*Node, depth int)
	walk = func(nodes []*Node, depth int) {
		for _, n := range nodes {
			fn(n, depth)
			walk(n.Children, depth+1)
		}
	}
	walk(f, 0)
}

// Titles returns every title in pre-order: a node precedes its descendants,
// which precede its next sibling.
func (f Forest) Titles() []string {
	var titles []string
	f.Walk(func(n *Node, _ int) {
		titles = append(titles, n.Title)
	})
	return titles
}

// Count returns the total number of nodes.
func (f Forest) Count() int {
	n := 0
	f.Walk(func(*Node, int) { n++ })
	return n
}

// Depth returns the number of levels in the forest (0 when empty).
func (f Forest) Depth() int {
	max := 0
	f.Walk(func(_ *Node, depth int) {
		if depth+1 > max {
			max = depth + 1
		}
	})
	return max
}
