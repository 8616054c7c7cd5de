// Package textstat turns free text into TF-IDF vectors.
//
// Text is NFC-normalized and lowercased, split into runs of at least two
// word characters, and filtered through an embedded stop-word list. Fit
// freezes a vocabulary and smoothed idf weights; Transform only reads them,
// so a fitted Vectorizer can be shared freely.
package textstat
