// Package tree turns flat parent-referencing records into an indented,
// depth-first list suitable for a single-level selection control.
//
// # Overview
//
// Hierarchical data is usually stored as an adjacency list: every row carries
// an id, a display name and the id of its parent. This package rebuilds the
// hierarchy from those parent pointers without constructing an explicit tree
// and emits it in pre-order, each entry tagged with its depth:
//
//	Phone
//	|   iPhone
//	Computer
//	|   Mac
//	|   |   MacBook
//
// Processing happens in three stages:
//
//  1. [Normalize] converts heterogeneous input ([Item], [Record] or raw
//     map[string]any rows) into canonical [Record] values, applying optional
//     [NameTransform] hooks.
//  2. [Linearize] walks the records depth-first from the roots and returns
//     ordered [Entry] values with their levels.
//  3. [Render] prefixes every entry with one indent unit per level.
//
// [Tree] bundles the three stages behind a small configurable facade:
//
//	t := tree.New(tree.WithIndent("| "))
//	lines, err := t.Process(tree.Inputs(items))
//
// # Identifiers
//
// Identifiers are either integers or strings, modelled by [ID]. Two ids are
// equal only if they have the same kind and value: IntID(5) and StringID("5")
// never match, neither for parent lookup nor for deduplication.
//
// # Malformed Input
//
// Cycles, self-references, duplicate ids and orphans never fail a call.
// The first record carrying an id wins, later duplicates are dropped, orphans
// (records whose parent is never reached from a root) are omitted, and any
// branch deeper than the configured depth bound is cut off. The only errors
// are structural: a raw record missing a required key, or a depth bound above
// the allowed ceiling.
//
// # Complexity
//
// Children are found by scanning the remaining records at every level rather
// than through a pre-built index, so the worst case is O(maxDepth × N²). This
// is fine for selection lists but not for very large tables.
//
// # Concurrency
//
// All traversal state lives inside a single call. Concurrent calls on
// independent inputs are safe; a [Tree] must not be reconfigured with
// [Tree.SetMaxDepth] while another goroutine is processing with it.
package tree
