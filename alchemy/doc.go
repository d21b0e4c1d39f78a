// Package alchemy parses factor graph models from the Alchemy-style text
// format.
//
// # Format
//
// A model file has two sections. The first line must read "variables:",
// followed by one declaration per line:
//
//	rain
//	sprinkler	2
//	season	4
//
// A declaration is a name, optionally followed by a tab and the
// variable's arity (default 2). Variable ids are assigned densely in
// declaration order. The section ends at the "factors:" line; blank
// lines are not permitted before it.
//
// Each factor line lists its arguments separated by '/', terminated by
// "//", followed by one value per assignment and an optional "///"
// weight suffix:
//
//	rain/sprinkler// 0.1 2.5 0.4 1.0
//	season// 1 1 1 1 /// 0.75
//
// Values are log potentials, listed with the FIRST argument varying
// fastest. The parser remaps them into canonical (sorted by variable id)
// storage order, so "rain/sprinkler" and "sprinkler/rain" describe the
// same table when their value lists agree under that permutation. The
// weight is preserved on the table but never interpreted.
//
// Any malformed line aborts the parse; no partial model is returned.
package alchemy
