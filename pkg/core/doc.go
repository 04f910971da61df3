// Package core defines the shared language of the leapq system.
//
// This package contains:
//   - The backend-agnostic expression tree (Symbol, Number, FunctionCall)
//   - Canonical operator names shared by every dialect
//   - Structural helpers (Walk, FreeSymbols, Equal)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
