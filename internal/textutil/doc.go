// Package textutil provides small Unicode-aware string helpers shared by the
// resolver, catalog and CLI: query normalisation, rune-safe truncation and
// display casing.
package textutil
