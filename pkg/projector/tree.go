// File: pkg/projector/tree.go
package projector

import (
	"fmt"
	"sort"
	"strings"
)

// treeNode is one directory or file of the rendered tree.
type treeNode struct {
	name     string
	children map[string]*treeNode
}

func (n *treeNode) isDir() bool { return n.children != nil }

// Tree renders the included files as an indented directory tree rooted at
// the scanned directory. Directories come first, then files, both sorted
// case-insensitively.
func (r *Result) Tree() string {
	root := &treeNode{name: r.Root, children: map[string]*treeNode{}}
	for _, rec := range r.Records {
		node := root
		parts := strings.Split(rec.Rel, "/")
		for i, part := range parts {
			child, ok := node.children[part]
			if !ok {
				child = &treeNode{name: part}
				if i < len(parts)-1 {
					child.children = map[string]*treeNode{}
				}
				node.children[part] = child
			}
			node = child
		}
	}

	var treeBuilder strings.Builder
	treeBuilder.WriteString(strings.TrimSuffix(normalizePath(r.Root), "/") + "/\n")
	for _, line := range renderTree(root, "") {
		treeBuilder.WriteString(line)
		treeBuilder.WriteString("\n")
	}
	return treeBuilder.String()
}

// renderTree builds the tree lines below node recursively.
func renderTree(node *treeNode, prefix string) []string {
	entries := make([]*treeNode, 0, len(node.children))
	for _, child := range node.children {
		entries = append(entries, child)
	}

	// Sort entries: directories first, then files, alphabetically
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].isDir() != entries[j].isDir() {
			return entries[i].isDir()
		}
		return strings.ToLower(entries[i].name) < strings.ToLower(entries[j].name)
	})

	var output []string
	for i, entry := range entries {
		connector := "├── "
		indent := "│   "
		if i == len(entries)-1 {
			connector = "└── "
			indent = "    "
		}

		if entry.isDir() {
			output = append(output, fmt.Sprintf("%s%s%s/", prefix, connector, entry.name))
			output = append(output, renderTree(entry, prefix+indent)...)
			continue
		}
		output = append(output, prefix+connector+entry.name)
	}
	return output
}
