// Package formats provides parsers for 3D geometry interchange formats.
package formats

// Note: PLY (Polygon File Format, ASCII variant) is implemented in ply.go
