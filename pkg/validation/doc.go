// Package validation implements the pure step validator: required and
// format rules over visible fields, with a first-invalid marker for
// presenters and a whole-schema scan for resume repositioning.
package validation
