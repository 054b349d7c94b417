package formats

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DefaultPLYHeaderPrefix is how many leading bytes are read when looking for
// the header. Headers longer than this are reported as unterminated.
const DefaultPLYHeaderPrefix = 4096

// PLY format errors.
var (
	ErrPLYHeaderNotASCII      = errors.New("PLY header prefix is not 7-bit ASCII")
	ErrPLYNoVertexElement     = errors.New("PLY header has no 'element vertex <n>' line")
	ErrPLYHeaderNotTerminated = errors.New("PLY header has no end_header line")
	ErrPLYBodyNotText         = errors.New("PLY body is not valid UTF-8 text")
	ErrPLYUnsupportedFormat   = errors.New("unsupported PLY format")
)

// PLYFormat identifies the encoding declared by the "format" header line.
type PLYFormat int

// Declared formats. Only PLYFormatASCII (and headers with no recognizable
// format line) have a body decoder.
const (
	PLYFormatUnknown PLYFormat = iota
	PLYFormatASCII
	PLYFormatBinaryLittleEndian
	PLYFormatBinaryBigEndian
)

// String returns the format name as it appears in a PLY header.
func (f PLYFormat) String() string {
	switch f {
	case PLYFormatASCII:
		return "ascii"
	case PLYFormatBinaryLittleEndian:
		return "binary_little_endian"
	case PLYFormatBinaryBigEndian:
		return "binary_big_endian"
	default:
		return "unknown"
	}
}

// IsBinary returns true for the binary encodings.
func (f PLYFormat) IsBinary() bool {
	return f == PLYFormatBinaryLittleEndian || f == PLYFormatBinaryBigEndian
}

// PLYProperty is one scalar column of a vertex row, in file order.
type PLYProperty struct {
	Type string
	Name string
}

// PLYHeader is the decoded header of a PLY file.
type PLYHeader struct {
	Format           PLYFormat
	VertexCount      int
	VertexProperties []PLYProperty

	// HeaderLength is the byte length of the header including the
	// end_header line and its newline. It is the offset of the body.
	HeaderLength int

	// Terminated reports whether end_header was found inside the prefix.
	Terminated bool
}

// PLYVertex is an interleaved position + color record (24 bytes).
// Color is in the file's 0-255 scale and defaults to white.
type PLYVertex struct {
	Position [3]float32
	Color    [3]float32
}

// PLYGeometry is the result of loading a PLY file.
type PLYGeometry struct {
	Header   *PLYHeader
	Vertices []PLYVertex
	// Indices holds three entries per triangle in emission order.
	// Empty for point clouds.
	Indices []uint32
}

// TriangleCount returns the number of triangles in Indices.
func (g *PLYGeometry) TriangleCount() int {
	return len(g.Indices) / 3
}

// IsPointCloud returns true if the geometry has no faces.
func (g *PLYGeometry) IsPointCloud() bool {
	return len(g.Indices) == 0
}

// ParsePLYHeader reads at most prefix bytes from r and decodes the header.
// Lines after end_header are never inspected.
func ParsePLYHeader(r io.Reader, prefix int) (*PLYHeader, error) {
	if prefix <= 0 {
		prefix = DefaultPLYHeaderPrefix
	}

	buf := make([]byte, prefix)
	n, err := io.ReadFull(r, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("reading PLY header: %w", err)
	}
	buf = buf[:n]

	if !isASCII(buf) {
		return nil, ErrPLYHeaderNotASCII
	}

	header, hasVertexElement := scanPLYHeader(string(buf))
	if !hasVertexElement {
		return nil, ErrPLYNoVertexElement
	}
	return header, nil
}

// scanPLYHeader walks header lines up to end_header and reports whether an
// "element vertex <n>" line was seen.
func scanPLYHeader(text string) (*PLYHeader, bool) {
	header := &PLYHeader{Format: PLYFormatUnknown}
	hasVertexElement := false
	inVertexElement := false

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		header.HeaderLength += len(line) + 1

		if trimmed == "end_header" {
			header.Terminated = true
			break
		}

		switch {
		case strings.HasPrefix(trimmed, "format"):
			header.Format = classifyPLYFormat(trimmed)

		case strings.HasPrefix(trimmed, "element vertex"):
			fields := splitSpaces(trimmed)
			if len(fields) != 3 {
				continue
			}
			count, err := strconv.Atoi(fields[2])
			if err != nil || count < 0 {
				continue
			}
			header.VertexCount = count
			hasVertexElement = true
			inVertexElement = true

		case strings.HasPrefix(trimmed, "element"):
			inVertexElement = false

		case inVertexElement && strings.HasPrefix(trimmed, "property"):
			fields := splitSpaces(trimmed)
			if len(fields) != 3 {
				continue
			}
			header.VertexProperties = append(header.VertexProperties, PLYProperty{
				Type: fields[1],
				Name: fields[2],
			})
		}
	}

	return header, hasVertexElement
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// ParsePLYHeaderFile decodes the header of the file at path, reading only
// the first prefix bytes.
func ParsePLYHeaderFile(path string, prefix int) (*PLYHeader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PLY file: %w", err)
	}
	defer f.Close()

	return ParsePLYHeader(f, prefix)
}

// classifyPLYFormat matches a "format ..." line. The first match wins.
func classifyPLYFormat(line string) PLYFormat {
	switch {
	case strings.Contains(line, "ascii"):
		return PLYFormatASCII
	case strings.Contains(line, "binary_little_endian"):
		return PLYFormatBinaryLittleEndian
	case strings.Contains(line, "binary_big_endian"):
		return PLYFormatBinaryBigEndian
	default:
		return PLYFormatUnknown
	}
}

// ParsePLY parses a complete ASCII PLY file from raw bytes.
// Malformed vertex and face rows are skipped, and unparsable scalars fall
// back to defaults, so a non-nil result may hold fewer elements than the
// header declares.
func ParsePLY(data []byte, prefix int) (*PLYGeometry, error) {
	header, lines, err := splitPLYBody(data, prefix)
	if err != nil {
		return nil, err
	}

	vertexLines, faceLines := partitionRows(lines, header.VertexCount)

	geom := &PLYGeometry{
		Header:   header,
		Vertices: parseVertexRows(vertexLines, header.VertexProperties),
		Indices:  []uint32{},
	}
	for _, line := range faceLines {
		tris, ok := parseFaceRow(line)
		if !ok {
			continue
		}
		geom.Indices = append(geom.Indices, tris...)
	}

	return geom, nil
}

// ParsePLYFile parses a PLY file from disk.
func ParsePLYFile(path string, prefix int) (*PLYGeometry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading PLY file: %w", err)
	}
	return ParsePLY(data, prefix)
}

// ParsePLYVertices parses only the vertex rows of a PLY file, ignoring faces.
func ParsePLYVertices(data []byte, prefix int) ([]PLYVertex, error) {
	header, lines, err := splitPLYBody(data, prefix)
	if err != nil {
		return nil, err
	}

	vertexLines, _ := partitionRows(lines, header.VertexCount)
	return parseVertexRows(vertexLines, header.VertexProperties), nil
}

// splitPLYBody decodes the header once and returns the body lines that
// follow it, starting at HeaderLength. A header that runs past the prefix
// is rescanned over the whole file.
func splitPLYBody(data []byte, prefix int) (*PLYHeader, []string, error) {
	header, err := ParsePLYHeader(bytes.NewReader(data), prefix)
	if err != nil {
		return nil, nil, err
	}
	if prefix <= 0 {
		prefix = DefaultPLYHeaderPrefix
	}
	if !header.Terminated && len(data) > prefix {
		header, err = scanFullPLYHeader(data)
		if err != nil {
			return nil, nil, err
		}
	}
	if header.Format.IsBinary() {
		return nil, nil, fmt.Errorf("%w: %s", ErrPLYUnsupportedFormat, header.Format)
	}
	if !header.Terminated {
		return nil, nil, ErrPLYHeaderNotTerminated
	}
	if !utf8.Valid(data) {
		return nil, nil, ErrPLYBodyNotText
	}

	start := header.HeaderLength
	if start > len(data) {
		start = len(data)
	}

	lines := strings.Split(string(data[start:]), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return header, lines, nil
}

// scanFullPLYHeader decodes a header longer than the prefix. Only the
// header bytes themselves must be ASCII.
func scanFullPLYHeader(data []byte) (*PLYHeader, error) {
	header, hasVertexElement := scanPLYHeader(string(data))
	if !hasVertexElement {
		return nil, ErrPLYNoVertexElement
	}
	end := header.HeaderLength
	if end > len(data) {
		end = len(data)
	}
	if !isASCII(data[:end]) {
		return nil, ErrPLYHeaderNotASCII
	}
	return header, nil
}

// partitionRows splits body lines into the first vertexCount vertex rows
// and everything after them.
func partitionRows(lines []string, vertexCount int) (vertexRows, faceRows []string) {
	if vertexCount > len(lines) {
		vertexCount = len(lines)
	}
	return lines[:vertexCount], lines[vertexCount:]
}

// parseVertexRows maps each row's columns onto position and color fields by
// property name. Rows with fewer columns than properties are dropped.
func parseVertexRows(lines []string, props []PLYProperty) []PLYVertex {
	vertices := make([]PLYVertex, 0, len(lines))

	for _, line := range lines {
		fields := splitSpaces(line)
		if len(fields) < len(props) {
			continue
		}

		v := PLYVertex{Color: [3]float32{255, 255, 255}}
		for i, prop := range props {
			switch prop.Name {
			case "x":
				v.Position[0] = parseScalar(fields[i], 0)
			case "y":
				v.Position[1] = parseScalar(fields[i], 0)
			case "z":
				v.Position[2] = parseScalar(fields[i], 0)
			case "red":
				v.Color[0] = parseScalar(fields[i], 255)
			case "green":
				v.Color[1] = parseScalar(fields[i], 255)
			case "blue":
				v.Color[2] = parseScalar(fields[i], 255)
			}
		}
		vertices = append(vertices, v)
	}

	return vertices
}

// parseFaceRow converts a "<n> i0 i1 ..." row into triangle indices.
// Non-integer tokens are discarded before the row is interpreted.
func parseFaceRow(line string) ([]uint32, bool) {
	var values []int
	for _, tok := range splitSpaces(line) {
		v, err := strconv.Atoi(tok)
		if err != nil {
			continue
		}
		values = append(values, v)
	}
	if len(values) < 4 {
		return nil, false
	}

	n := values[0]
	refs := values[1:]
	if n < 3 || len(refs) < n {
		return nil, false
	}

	polygon := make([]uint32, n)
	for i := 0; i < n; i++ {
		if refs[i] < 0 || int64(refs[i]) > math.MaxUint32 {
			return nil, false
		}
		polygon[i] = uint32(refs[i])
	}

	return FanTriangulate(polygon), true
}

// FanTriangulate splits a convex polygon into len(polygon)-2 triangles that
// all share polygon[0]: (p0, p1, p2), (p0, p2, p3), ...
// A triangle is returned unchanged; fewer than three vertices yield nil.
func FanTriangulate(polygon []uint32) []uint32 {
	if len(polygon) < 3 {
		return nil
	}

	out := make([]uint32, 0, (len(polygon)-2)*3)
	for i := 1; i < len(polygon)-1; i++ {
		out = append(out, polygon[0], polygon[i], polygon[i+1])
	}
	return out
}

func parseScalar(tok string, fallback float32) float32 {
	v, err := strconv.ParseFloat(tok, 32)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return fallback
	}
	// Out-of-range values come back as +/-Inf.
	return float32(v)
}

// splitSpaces splits on the space character only, dropping empty tokens.
func splitSpaces(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == ' ' })
}
