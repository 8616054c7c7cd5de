// Package profile builds a reference profile from collected users and scores
// new users against it.
//
// A ReferenceProfile freezes a TF-IDF vocabulary fitted on every reference
// post, the mean vector of those posts and a tally of the groups the
// reference users follow. Compare never refits, so a profile can be reused
// for any number of candidates.
package profile
