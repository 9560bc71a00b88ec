// Package memory provides the in-process session store used by default and in tests.
package memory
