/*
Package graph holds the node arena of a fan control graph.

Nodes are stored by id and reference their inputs by id only, so renames never leave
stale references behind. The root set (nodes no other node takes as input) is rebuilt
after every structural change and a Version counter tracks every mutation.

Edits validate before they mutate: a rejected edit returns a *domain.ValidationError
and leaves the graph exactly as it was. Wiring edits refuse disallowed kinds, arity
overflows, self references and cycles. SanitizeInputs repairs graphs built by other
means, such as a Remove or a hand-written config.

ApplyConfig and ExportConfig convert between the graph and the persisted config.Config.
*/
package graph
