// Package video assembles captured frame sequences into timelapse
// videos. Small sequences are encoded in one pass; longer ones are
// split into fixed-size batches, encoded as segments inside a hidden
// temp workspace, and concatenated without re-encoding. The batching
// keeps peak memory flat so multi-day prints still encode on a Pi
// Zero's RAM.
package video
