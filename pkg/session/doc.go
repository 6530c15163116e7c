/*
Package session keeps wizard sessions for hosts that serve many users.

A Manager wraps a ports.StateStore and serializes every read-modify-write on one
session, locally with reference-counted mutexes and, across replicas, with an
optional ports.DistributedLocker.
*/
package session
