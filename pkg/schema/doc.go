/*
Package schema defines the typed, immutable representation of a
questionnaire: ordered steps, discriminated field kinds, and the small
condition language that gates visibility and requiredness.

Schemas are loaded once per session from JSON or YAML and validated
structurally before any runtime touches them.
*/
package schema
