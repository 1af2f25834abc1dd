// Package messages holds the message templates used to render validation
// errors, the process-wide default table, and the placeholder formatter.
//
// The default table is English. SetLanguage swaps it atomically for another
// supported language; a table is never mutated in place once published.
// Per-call overrides are deep-merged over the default with Merge, and may be
// loaded from YAML or JSON documents with LoadYAML and LoadJSON.
package messages
