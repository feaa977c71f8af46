// Package session models a single print being recorded: its identity,
// its frame directory under the prints root, and the capture cadence.
// The tracker turns raw printer status polls into start/end transitions
// and the scheduler decides when the next frame is due.
package session
