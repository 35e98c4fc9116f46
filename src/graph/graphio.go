package graph

import (
	"fmt"
	"strconv"

	"github.com/awalterschulze/gographviz"
	"github.com/pkg/errors"
)

// DOT renders the live part of the graph in graphviz DOT format, each adjacency is drawn once
func (g *Graph) DOT() (string, error) {
	dot := gographviz.NewGraph()
	if err := dot.SetName("debruijn"); err != nil {
		return "", err
	}
	if err := dot.SetDir(true); err != nil {
		return "", err
	}
	for id := range g.Nodes {
		node := &g.Nodes[id]
		if node.Deleted {
			continue
		}
		attrs := map[string]string{
			"label": fmt.Sprintf("\"%s\\n%d\"", g.NodeSequence(id, true), node.Count),
		}
		if node.Palindrome {
			attrs["shape"] = "box"
		}
		if err := dot.AddNode("debruijn", strconv.Itoa(id), attrs); err != nil {
			return "", errors.Wrapf(err, "could not add node %d to DOT graph", id)
		}
	}
	for id := range g.Nodes {
		node := &g.Nodes[id]
		if node.Deleted {
			continue
		}
		for _, right := range []bool{false, true} {
			edges := node.Left
			if right {
				edges = node.Right
			}
			for _, e := range edges {
				if e.To < id || (e.To == id && !right) {
					continue
				}
				attrs := map[string]string{}
				if !e.Same {
					attrs["style"] = "dashed"
				}
				from, to := strconv.Itoa(id), strconv.Itoa(e.To)
				if !right {
					from, to = to, from
				}
				if err := dot.AddEdge(from, to, true, attrs); err != nil {
					return "", errors.Wrapf(err, "could not add edge %d-%d to DOT graph", id, e.To)
				}
			}
		}
	}
	return dot.String(), nil
}
