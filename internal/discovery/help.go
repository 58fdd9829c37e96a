// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"sort"

	"golang.org/x/exp/slices"
)

type (
	// HelpItems gathers the override keys a controller's requests would
	// consult, for display after a help-mode run.
	HelpItems struct {
		items map[string][]string
	}

	// HelpItem is one override key with its descriptions.
	HelpItem struct {
		Argument     string
		Descriptions []string
	}
)

// NewHelpItems returns an empty collector.
func NewHelpItems() *HelpItems {
	return &HelpItems{items: make(map[string][]string)}
}

// Add records description for argument. Duplicate descriptions are ignored.
func (h *HelpItems) Add(argument, description string) {
	if slices.Contains(h.items[argument], description) {
		return
	}
	h.items[argument] = append(h.items[argument], description)
}

// Len returns the number of distinct arguments.
func (h *HelpItems) Len() int {
	return len(h.items)
}

// Sorted returns the items ordered by argument.
func (h *HelpItems) Sorted() []HelpItem {
	out := make([]HelpItem, 0, len(h.items))
	for arg, descs := range h.items {
		out = append(out, HelpItem{Argument: arg, Descriptions: slices.Clone(descs)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Argument < out[j].Argument })
	return out
}
