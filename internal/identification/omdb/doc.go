// Package omdb provides the Open Movie Database client used to enrich
// watch-list entries and to resolve titles extracted from reels.
//
// Requests are throttled with a token bucket and guarded by a circuit
// breaker. OMDb reports misses as {"Response":"False"}; the client maps
// them to empty results rather than errors, and "N/A" fields to empty values.
package omdb
