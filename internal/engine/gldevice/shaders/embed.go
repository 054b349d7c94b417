// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// GeometryVertexShader normalizes PLY positions and projects them.
//
//go:embed geometry.vert
var GeometryVertexShader string

// GeometryFragmentShader outputs the interpolated vertex color.
//
//go:embed geometry.frag
var GeometryFragmentShader string
