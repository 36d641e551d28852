// Package editor is the host adapter between the node-graph editor and the
// port reconciler.
//
// A Host keeps a text snapshot for every live node. Text edits are debounced
// per node; when the quiet period ends the node's wildcard references are
// extracted, reconciled against its dynamic ports and the resulting edit is
// applied to the node's port store. Each node has its own lock, so two
// reconciliation passes never run concurrently on the same node.
package editor
