/*
Package session serializes access to persisted calculator sessions.

A Manager pairs a ports.StateStore with per-session mutexes and, optionally,
a ports.DistributedLocker so that several server replicas can share one
Redis-backed store without interleaving key presses.
*/
package session
