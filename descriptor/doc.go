// Package descriptor loads govalid rule sets and data documents from YAML or
// JSON. Field order in a rule document is the validation order of the
// resulting schema, and repeated keys are rejected with their position.
package descriptor
