// Package client implements the participant side of the rendezvous.
//
// The client performs the following steps:
//	1. Connect to the arbiter server.
//	2. Read one signal from the server.
// 	3. On GO, transmit <name>:<counter>, advance the counter by the fixed
// 	   step, and pause briefly before reading the next signal.
// 	4. On WAIT, pause briefly and read again.
//
// The client is purely reactive: it never transmits without a GO and holds
// no state beyond its name and counter. Any I/O failure is fatal; there is
// no reconnect. The pauses exist only to keep console output readable.
package client
