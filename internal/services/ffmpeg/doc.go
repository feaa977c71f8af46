// Package ffmpeg encodes JPEG frame sequences into H.264 video via the
// ffmpeg CLI. It exposes the three invocations the assembler composes:
// a glob encode for small sequences, a concat-demuxer encode for batch
// segments, and a stream-copy concat for joining segments.
package ffmpeg
