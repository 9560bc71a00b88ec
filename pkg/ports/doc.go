/*
Package ports holds the interfaces adapters are written against.

Engine is the calculator as the HTTP, MCP and terminal front-ends see it.
StateStore and DistributedLocker are what the session manager needs from a
backend; the memory and redis adapters implement them, and
RunStateStoreContract checks any new implementation.
*/
package ports
