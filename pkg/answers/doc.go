// Package answers holds the mutable answer state of a session: typed values
// keyed by field ID, edit normalization, and the hidden-field cleanup pass
// that keeps conditional answers consistent with their driving fields.
package answers
