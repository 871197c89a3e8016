// Package catalog implements the watch-list operations that need upstream
// help: adding titles resolved through OMDb, generating short Russian
// descriptions with a language model, and free-text recommendations drawn
// from the stored entries.
package catalog
