package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/blendmask/pkg/mask"
	"github.com/Faultbox/blendmask/pkg/math"
)

// ErrInvalidOBJ is returned for malformed Wavefront OBJ data.
var ErrInvalidOBJ = errors.New("invalid OBJ data")

// OBJ is a Wavefront OBJ mesh reduced to what blending needs: vertex
// positions and polygon faces. Lines other than "v" are kept so WriteOBJ can
// reproduce the file with new positions.
type OBJ struct {
	Positions mask.Positions
	Faces     [][]int // 0-based vertex indices

	source []string
}

// VertexCount returns the number of vertices.
func (o *OBJ) VertexCount() int {
	return len(o.Positions)
}

// Adjacency derives vertex adjacency from the faces.
func (o *OBJ) Adjacency() (mask.Adjacency, error) {
	return mask.BuildAdjacency(len(o.Positions), o.Faces)
}

// WithPositions returns a copy of o with its positions replaced.
// The vertex count must not change.
func (o *OBJ) WithPositions(p mask.Positions) (*OBJ, error) {
	if len(p) != len(o.Positions) {
		return nil, fmt.Errorf("%w: %d positions for a mesh with %d vertices",
			mask.ErrLengthMismatch, len(p), len(o.Positions))
	}
	out := &OBJ{
		Positions: make(mask.Positions, len(p)),
		Faces:     o.Faces,
		source:    o.source,
	}
	copy(out.Positions, p)
	return out, nil
}

// ParseOBJ reads vertices ("v x y z") and faces ("f a b c ...") from an OBJ
// stream. Face references may use the v/vt/vn forms and negative indices.
func ParseOBJ(r io.Reader) (*OBJ, error) {
	obj := &OBJ{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		obj.source = append(obj.source, line)

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			p, err := parseOBJVertex(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			obj.Positions = append(obj.Positions, p)
		case "f":
			face, err := parseOBJFace(fields[1:], len(obj.Positions))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			obj.Faces = append(obj.Faces, face)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ: %w", err)
	}

	// Faces may reference vertices declared later in the file.
	for i, face := range obj.Faces {
		for _, v := range face {
			if v >= len(obj.Positions) {
				return nil, fmt.Errorf("%w: face %d references vertex %d of %d",
					ErrInvalidOBJ, i, v+1, len(obj.Positions))
			}
		}
	}
	return obj, nil
}

// ParseOBJFile reads an OBJ mesh from disk.
func ParseOBJFile(path string) (*OBJ, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening OBJ file: %w", err)
	}
	defer f.Close()
	return ParseOBJ(f)
}

func parseOBJVertex(fields []string) (math.Vec3, error) {
	if len(fields) < 3 {
		return math.Vec3{}, fmt.Errorf("%w: vertex needs 3 coordinates", ErrInvalidOBJ)
	}
	var c [3]float32
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return math.Vec3{}, fmt.Errorf("%w: coordinate %q", ErrInvalidOBJ, fields[i])
		}
		c[i] = float32(f)
	}
	return math.Vec3{X: c[0], Y: c[1], Z: c[2]}, nil
}

func parseOBJFace(fields []string, seen int) ([]int, error) {
	if len(fields) < 3 {
		return nil, fmt.Errorf("%w: face needs at least 3 vertices", ErrInvalidOBJ)
	}
	face := make([]int, 0, len(fields))
	for _, ref := range fields {
		idx := ref
		if slash := strings.IndexByte(ref, '/'); slash >= 0 {
			idx = ref[:slash]
		}
		n, err := strconv.Atoi(idx)
		if err != nil || n == 0 {
			return nil, fmt.Errorf("%w: face reference %q", ErrInvalidOBJ, ref)
		}
		if n < 0 {
			n = seen + n
		} else {
			n--
		}
		if n < 0 {
			return nil, fmt.Errorf("%w: face reference %q", ErrInvalidOBJ, ref)
		}
		face = append(face, n)
	}
	return face, nil
}

// WriteOBJ writes o. A mesh read with ParseOBJ is reproduced line by line
// with its "v" lines replaced by the current positions; other meshes are
// written as plain "v" and "f" lines.
func WriteOBJ(w io.Writer, o *OBJ) error {
	bw := bufio.NewWriter(w)

	if o.source == nil {
		for _, p := range o.Positions {
			writeOBJVertex(bw, p, nil)
		}
		for _, face := range o.Faces {
			bw.WriteString("f")
			for _, v := range face {
				fmt.Fprintf(bw, " %d", v+1)
			}
			bw.WriteByte('\n')
		}
		return bw.Flush()
	}

	next := 0
	for _, line := range o.source {
		fields := strings.Fields(line)
		if len(fields) > 0 && fields[0] == "v" {
			if next >= len(o.Positions) {
				return fmt.Errorf("%w: more vertex lines than positions", mask.ErrLengthMismatch)
			}
			// Fields past x y z (w or vertex colors) ride along unchanged.
			writeOBJVertex(bw, o.Positions[next], fields[min(len(fields), 4):])
			next++
			continue
		}
		bw.WriteString(line)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteOBJFile writes o to path.
func WriteOBJFile(path string, o *OBJ) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating OBJ file: %w", err)
	}
	if err := WriteOBJ(f, o); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeOBJVertex(w *bufio.Writer, p math.Vec3, extra []string) {
	fmt.Fprintf(w, "v %s %s %s", formatCoord(p.X), formatCoord(p.Y), formatCoord(p.Z))
	for _, f := range extra {
		w.WriteByte(' ')
		w.WriteString(f)
	}
	w.WriteByte('\n')
}

func formatCoord(f float32) string {
	return strconv.FormatFloat(float64(f), 'f', -1, 32)
}
