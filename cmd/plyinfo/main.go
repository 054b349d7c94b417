// plyinfo is a CLI utility for inspecting ASCII PLY files.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Faultbox/plyview/internal/engine/render"
	"github.com/Faultbox/plyview/pkg/formats"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "header":
		cmdHeader(args)
	case "stats":
		cmdStats(args)
	case "vertices", "v":
		cmdVertices(args)
	case "faces", "f":
		cmdFaces(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`plyinfo - PLY file inspector

Usage:
  plyinfo <command> [options] <file.ply>

Commands:
  header   <file.ply>            Show the decoded header
  stats    <file.ply>            Show loaded geometry counts and bounds
  vertices [-n N] <file.ply>     Print the first N vertices
  faces    [-n N] <file.ply>     Print the first N triangles

Options:
  -prefix N   Header scan size in bytes (default 4096)

Examples:
  plyinfo header bunny.ply
  plyinfo stats -prefix 8192 scan.ply
  plyinfo faces -n 5 cube.ply`)
}

func newFlagSet(name string) (*flag.FlagSet, *int) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	prefix := fs.Int("prefix", formats.DefaultPLYHeaderPrefix, "Header scan size in bytes")
	return fs, prefix
}

func requireFile(fs *flag.FlagSet, usage string) string {
	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: plyinfo %s\n", usage)
		os.Exit(1)
	}
	return fs.Arg(0)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func cmdHeader(args []string) {
	fs, prefix := newFlagSet("header")
	fs.Parse(args)
	path := requireFile(fs, "header <file.ply>")

	header, err := formats.ParsePLYHeaderFile(path, *prefix)
	if err != nil {
		fail(err)
	}

	fmt.Printf("File:          %s\n", path)
	fmt.Printf("Format:        %s\n", header.Format)
	fmt.Printf("Vertices:      %d\n", header.VertexCount)
	fmt.Printf("Header bytes:  %d\n", header.HeaderLength)
	if !header.Terminated {
		fmt.Printf("               (end_header not found in first %d bytes)\n", *prefix)
	}
	fmt.Println()
	fmt.Println("Vertex properties:")
	for i, p := range header.VertexProperties {
		fmt.Printf("  %2d  %-8s %s\n", i, p.Type, p.Name)
	}
}

func cmdStats(args []string) {
	fs, prefix := newFlagSet("stats")
	fs.Parse(args)
	path := requireFile(fs, "stats <file.ply>")

	geom, err := formats.ParsePLYFile(path, *prefix)
	if err != nil {
		fail(err)
	}

	fmt.Printf("File:       %s\n", path)
	fmt.Printf("Format:     %s\n", geom.Header.Format)
	fmt.Printf("Vertices:   %d loaded / %d declared\n", len(geom.Vertices), geom.Header.VertexCount)
	if geom.IsPointCloud() {
		fmt.Println("Draw path:  points")
	} else {
		fmt.Printf("Triangles:  %d\n", geom.TriangleCount())
		fmt.Println("Draw path:  indexed triangles")
	}

	if len(geom.Vertices) == 0 {
		return
	}
	b := render.ComputeBounds(geom.Vertices)
	fmt.Println()
	fmt.Printf("Min:        (%g, %g, %g)\n", b.Min.X, b.Min.Y, b.Min.Z)
	fmt.Printf("Max:        (%g, %g, %g)\n", b.Max.X, b.Max.Y, b.Max.Z)
	c := b.Center()
	fmt.Printf("Center:     (%g, %g, %g)  [min+max]\n", c.X, c.Y, c.Z)
	fmt.Printf("Scale:      %g\n", b.Scale())
}

func cmdVertices(args []string) {
	fs, prefix := newFlagSet("vertices")
	limit := fs.Int("n", 10, "Number of vertices to print (0 = all)")
	fs.Parse(args)
	path := requireFile(fs, "vertices [-n N] <file.ply>")

	data, err := os.ReadFile(path)
	if err != nil {
		fail(err)
	}
	vertices, err := formats.ParsePLYVertices(data, *prefix)
	if err != nil {
		fail(err)
	}

	for i, v := range vertices {
		if *limit > 0 && i >= *limit {
			fmt.Printf("... %d more\n", len(vertices)-i)
			break
		}
		fmt.Printf("%6d  pos=(%g, %g, %g)  color=(%g, %g, %g)\n", i,
			v.Position[0], v.Position[1], v.Position[2],
			v.Color[0], v.Color[1], v.Color[2])
	}
}

func cmdFaces(args []string) {
	fs, prefix := newFlagSet("faces")
	limit := fs.Int("n", 10, "Number of triangles to print (0 = all)")
	fs.Parse(args)
	path := requireFile(fs, "faces [-n N] <file.ply>")

	geom, err := formats.ParsePLYFile(path, *prefix)
	if err != nil {
		fail(err)
	}
	if geom.IsPointCloud() {
		fmt.Println("No faces (point cloud)")
		return
	}

	count := geom.TriangleCount()
	for i := 0; i < count; i++ {
		if *limit > 0 && i >= *limit {
			fmt.Printf("... %d more\n", count-i)
			break
		}
		tri := geom.Indices[i*3 : i*3+3]
		fmt.Printf("%6d  %d %d %d\n", i, tri[0], tri[1], tri[2])
	}
}
