/*
Package domain contains the core models and pure logic of the prompt drafter.

It has no I/O: every function here is a deterministic transformation of text
or of port name sets, so host adapters can call it from their own event hooks.

# Key Pieces

  - ExtractWildcards: distinct {wildcard_name} references in one or more texts.
  - Reconcile: the PortEdit that turns a node's current dynamic ports into the required set.
  - NextPlaceholder: the next free numeric {wildcard_NN} placeholder.
  - SmartJoin: comma-aware joining of prompt fragments.
  - ParseValueList: splitting of wildcard list text into values.
  - Record: a saved dual prompt, single prompt or wildcard list.
*/
package domain
