/*
Package observability provides lifecycle hooks and Prometheus collectors
for monitoring a form session engine: step transitions, field edits,
snapshot flushes and submission outcomes.
*/
package observability
