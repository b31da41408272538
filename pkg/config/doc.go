/*
Package config defines the persisted projection of a control graph and its codecs.

A Config lists node definitions per kind. Inputs are wired by node name and hardware
by hardware id, so a config survives restarts and hardware re-enumeration; runtime
values and resolved hardware handles are never part of it.

Documents are YAML (default) or JSON. Both are decoded through a generic map and
github.com/mitchellh/mapstructure, then validated with go-playground/validator struct
tags plus cross-node wiring checks.
*/
package config
