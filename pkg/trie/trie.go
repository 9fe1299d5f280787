// Package trie implements the character-keyed prefix tree that holds a dictionary of
// banned phrases.
//
// A Trie is built once by Load and never mutated afterwards, so a single instance can be
// read by any number of goroutines without locking. Replacing a dictionary means building
// a new Trie and publishing the new pointer.
package trie

// Node is one matchable character of one or more phrases sharing a prefix.
type Node struct {
	ch       rune
	terminal bool
	children map[rune]*Node
}

// Char returns the character the node matches.
func (n *Node) Char() rune {
	return n.ch
}

// Terminal reports whether some phrase ends exactly at n.
func (n *Node) Terminal() bool {
	return n != nil && n.terminal
}

// HasChildren reports whether any phrase continues past n.
func (n *Node) HasChildren() bool {
	return n != nil && len(n.children) > 0
}

// Children returns the next level of the tree below n.
func (n *Node) Children() map[rune]*Node {
	if n == nil {
		return nil
	}
	return n.children
}

// Trie owns the root level of the tree. The root itself is implicit: it is never
// terminal and only its children mapping is stored.
type Trie struct {
	root map[rune]*Node
	size int
}

// Load builds a new Trie from phrases. Duplicates and empty entries are ignored.
func Load(phrases []string) *Trie {
	t := &Trie{root: make(map[rune]*Node)}

	seen := make(map[string]struct{}, len(phrases))
	for _, p := range phrases {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		t.insert(p)
	}

	return t
}

func (t *Trie) insert(phrase string) {
	level := t.root
	var node *Node
	for _, r := range phrase {
		next, ok := level[r]
		if !ok {
			next = &Node{ch: r, children: make(map[rune]*Node)}
			level[r] = next
		}
		node = next
		level = next.children
	}

	if node != nil && !node.terminal {
		node.terminal = true
		t.size++
	}
}

// RootChildren returns the first level of the tree. Its keys are the candidate start
// characters. The returned map must not be modified.
func (t *Trie) RootChildren() map[rune]*Node {
	if t == nil {
		return nil
	}
	return t.root
}

// Child returns the child of n matching r, or nil. A nil n stands for the root.
func (t *Trie) Child(n *Node, r rune) *Node {
	if n == nil {
		return t.RootChildren()[r]
	}
	return n.children[r]
}

// IsStart reports whether r can begin a match.
func (t *Trie) IsStart(r rune) bool {
	_, ok := t.RootChildren()[r]
	return ok
}

// Empty reports whether the trie holds no phrases.
func (t *Trie) Empty() bool {
	return t == nil || len(t.root) == 0
}

// Len returns the number of distinct phrases stored.
func (t *Trie) Len() int {
	if t == nil {
		return 0
	}
	return t.size
}
