/*
Package promptdrafter keeps the input ports of prompt-drafting nodes in step with
the wildcard references typed into their text fields.

A prompt such as "a {wildcard_animal} in the {wildcard_place}" requires two
inputs, wildcard_animal and wildcard_place. When the text changes, the editor
computes the minimal edit (ports to add, ports to remove) and applies it to the
node's port store. Ports that are still referenced are never touched, so links
wired into them survive every edit.

# Layout

  - pkg/domain: extraction, reconciliation, placeholder allocation, smart join and wildcard value lists.
  - pkg/editor: the debounced node host that drives reconciliation.
  - pkg/nodes: execution of the four node kinds.
  - pkg/library: saved prompts and wildcard lists over a pluggable store.
  - pkg/adapters: file, memory, Redis and SQLite stores, plus the HTTP and MCP surfaces.

# Usage

	host := editor.NewHost()
	node, _ := host.Create(domain.KindDualPrompt)
	_ = host.SetText(node.ID, domain.FieldPositive, "a {wildcard_animal}")
	view, _ := host.Flush(node.ID)
	fmt.Println(view.Ports) // [positive_prefix positive_suffix negative_prefix negative_suffix wildcard_animal]
*/
package promptdrafter
