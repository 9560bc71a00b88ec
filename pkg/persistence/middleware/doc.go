// Package middleware provides decorators for ports.StateStore.
//
// Stores are wrapped with Chain; NewLoggingMiddleware and
// NewInstrumentMiddleware report each Save, Load, Delete and List.
package middleware
