// Package server implements the arbiter side of the rendezvous.
//
// The server performs the following steps:
// 	1. Binds a TCP listening socket on the configured host and port.
// 	2. Accepts exactly two connections, assigning identity 1 to the first
// 	   and identity 2 to the second. It never accepts a third.
// 	3. Spawns one handler goroutine per session, then waits for both to finish.
// 	4. Each handler polls the shared arbiter. When the turn matches the
// 	   session's identity the handler sends GO, blocks on the reply, records
// 	   the accepted message in the transcript, and passes the turn to the
// 	   other identity. Otherwise it sends WAIT and re-checks after the poll
// 	   interval.
// 	5. A peer close, connection reset or malformed payload terminates that
// 	   session only; the other handler keeps polling.
//
// The turn starts at identity 1 and moves exactly once per accepted
// message, so acceptance order is always 1,2,1,2,... while both peers are
// connected. A malformed payload does not move the turn.
//
// Accepted messages are recorded in a process-lifetime transcript; nothing
// is persisted.
package server
