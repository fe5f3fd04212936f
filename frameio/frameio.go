// Package frameio is the frame-sink collaborator of spec.md §6: it writes
// fluid-only particle positions to an interchange point-cloud format,
// one file per frame, and never touches simulation state. A failure here
// is an simerr.IOError, non-fatal per spec.md §7: the caller logs and
// skips the frame rather than aborting the run.
package frameio

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"mixfluid/simerr"
	"mixfluid/vec3"
)

// Writer emits one ASCII PLY file per frame under Dir, named
// "<Prefix><frame_index>.ply", declaring only x, y, z float properties
// over the fluid vertex count, per spec.md §6.
type Writer struct {
	Dir    string
	Prefix string
}

// WriteFrame writes positions (fluid particles only) for frameIndex.
// Returns a *simerr.IOError on any failure; callers should treat it as
// non-fatal and continue the run.
func (w Writer) WriteFrame(frameIndex int, positions []vec3.V) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return &simerr.IOError{Frame: frameIndex, Op: "mkdir", Err: err}
	}
	path := filepath.Join(w.Dir, fmt.Sprintf("%s%d.ply", w.Prefix, frameIndex))

	f, err := os.Create(path)
	if err != nil {
		return &simerr.IOError{Frame: frameIndex, Op: "create", Err: err}
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	fmt.Fprintf(bw, "ply\n")
	fmt.Fprintf(bw, "format ascii 1.0\n")
	fmt.Fprintf(bw, "element vertex %d\n", len(positions))
	fmt.Fprintf(bw, "property float x\n")
	fmt.Fprintf(bw, "property float y\n")
	fmt.Fprintf(bw, "property float z\n")
	fmt.Fprintf(bw, "end_header\n")
	for _, p := range positions {
		fmt.Fprintf(bw, "%g %g %g\n", p.X, p.Y, p.Z)
	}
	if err := bw.Flush(); err != nil {
		return &simerr.IOError{Frame: frameIndex, Op: "write", Err: err}
	}
	return nil
}
