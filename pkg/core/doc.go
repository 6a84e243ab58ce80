// Package core defines the shared language of the leapcat catalog engine.
//
// This package contains:
//   - Object kinds and their static capability descriptors
//   - Capability interfaces composed by catalog objects (Named, Commented, ...)
//   - Declaration sub-entities extracted from program-unit sources
//   - The immutable predefined type table
//   - Typed errors shared by caches, the catalog and the DDL assembler
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
