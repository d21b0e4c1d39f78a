// Package model defines the factorized probabilistic model: an ordered
// collection of log-space potential tables over a shared variable set,
// plus the reverse index from each variable to the factors referencing
// it. Graph construction consumes the reverse index to materialize the
// pairwise Markov random field.
package model
