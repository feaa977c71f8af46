// Package monitor runs the core polling loop: watch the printer,
// record frames while it prints, and turn the frames into a timelapse
// with its reports when the print ends.
package monitor
