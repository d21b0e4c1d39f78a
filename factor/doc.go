// Package factor implements the discrete factor algebra underlying a
// factorized probabilistic model: variables, canonically ordered domains,
// linear-indexed assignments, and dense log-space potential tables.
//
// # Canonical Order
//
// A Domain holds its variables sorted by ascending variable ID, regardless
// of the order they were supplied in. Two domains over the same variables
// therefore index their assignments identically, which is what makes
// tables over {A,B} and {B,A} interchangeable.
//
// # Linear Indexing
//
// Every assignment to a domain corresponds to exactly one integer in
// [0, Card) under a mixed-radix encoding in which the FIRST canonical
// variable varies fastest. Tables store their values dense in this order,
// so iteration, encoding and decoding agree by construction.
//
// # Log-Space Arithmetic
//
// Potentials are kept in log space. Zero probability mass is represented
// by the finite sentinel LogZero rather than -Inf, so that subtracting a
// log normalizer never produces an Inf-Inf NaN: normalizing an
// all-LogZero table yields the exact uniform distribution.
package factor
