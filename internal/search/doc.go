// Package search turns catalog tracks into ranked search queries and picks
// the first acceptable candidate from the results the search index returns.
//
// Query generation strips noisy qualifiers (feat credits, remix or live
// tags, bracketed blocks) and phrases the remainder several ways, most
// specific first. Selection is deliberately permissive: candidates only
// have to clear the duration window and a reject-keyword list, and the
// first survivor wins in index order.
package search
