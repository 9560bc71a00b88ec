/*
Package session serializes access to calculator sessions.

A Manager wraps a ports.StateStore with per-session locks (reference counted so idle
sessions leave nothing behind) and, optionally, a ports.DistributedLocker so several
replicas can share one Redis store. Update is the read-modify-write primitive used by
every front-end that talks to more than one session.
*/
package session
