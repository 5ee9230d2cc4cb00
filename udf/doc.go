// Package udf exposes the kernels as packaged processes invoked by name with a flat key/value
// context, and the backends that run them either in-process or on a remote platform.
package udf
