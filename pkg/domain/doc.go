/*
Package domain contains the core domain models and evaluation rules for the fangraph engine.

It defines the nodes of the control graph, the closed set of node variants, the
hardware descriptors a bridge exposes, and the typed errors shared by every layer.
This package is kept pure and free of external dependencies like I/O or persistence,
following Hexagonal Architecture principles.

# Key Entities

  - Node: a unit of the control graph, addressed by a NodeID.
  - NodeType: the sealed sum type of variants (Temp, Fan, Control, Linear, Target, Graph, CustomTemp, Flat).
  - Value: an optional reading or computed output.
  - Inventory: the per-category list of hardware descriptors reported by a bridge.
  - Mode: Auto (device controlled) or Manual (engine controlled) state of a Control.
*/
package domain
