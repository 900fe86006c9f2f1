// Package textutil provides text helpers for filename sanitization and
// token-set similarity scoring.
//
// Sanitization strips characters that are unsafe in file names and bounds
// name length for cross-filesystem portability. Similarity scoring folds
// case and diacritics, tokenizes on non-alphanumeric boundaries, and
// compares token sets with the Jaccard coefficient.
package textutil
