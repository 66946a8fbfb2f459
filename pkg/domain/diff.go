package domain

import "sort"

// GeneChange records a node whose state differs between two snapshots.
type GeneChange struct {
	Node string `json:"node"`
	From bool   `json:"from"`
	To   bool   `json:"to"`
}

// Diff lists the nodes whose state changed between old and new, sorted by name.
// A node missing from old is compared against false.
func Diff(old, new GeneState) []GeneChange {
	var changes []GeneChange
	for name, to := range new {
		from := old[name]
		if from != to {
			changes = append(changes, GeneChange{Node: name, From: from, To: to})
		}
	}
	for name, from := range old {
		if _, ok := new[name]; !ok && from {
			changes = append(changes, GeneChange{Node: name, From: true, To: false})
		}
	}
	sort.Slice(changes, func(i, j int) bool {
		return changes[i].Node < changes[j].Node
	})
	return changes
}
