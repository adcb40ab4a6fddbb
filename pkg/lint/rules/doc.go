// Package rules holds the built-in lint rules. Importing it registers
// every rule with the lint registry.
package rules
