// SPDX-License-Identifier: MPL-2.0

// Package channel carries the line protocol between the engine and a
// controller.
//
// A controller is either a child process whose stdin and stdout are
// connected through pipes (Spawn) or the engine's own standard streams
// (Stdio), which lets a human or a test harness drive the engine directly.
// All I/O is blocking and synchronous.
package channel
