// Package testdoubles provides spy implementations of the readmodel
// observability interfaces for testing dispatch and document store
// instrumentation.
package testdoubles
