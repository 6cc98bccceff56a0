// Package vm implements the runtime class model of the AVM2 virtual machine.
//
// This package contains:
//   - Host objects with single delegation
//   - Trait tables: class, instance and interface member merging
//   - Class construction and the two-layer delegation chain
//   - Native class builders and trait installation
//   - The Domain registry that orders and owns loaded types
package vm
