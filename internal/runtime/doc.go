/*
Package runtime implements the session controller: navigation, the
submission state machine, debounced persistence and the rate-limit
countdown. It composes the schema, answer store, validator and the
persistence and submission ports on every user action.
*/
package runtime
