// meshtool is a CLI utility for inspecting glTF/GLB/VRM mesh data.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/qmuntal/gltf"

	"github.com/Faultbox/bifrost/internal/engine/mesh"
	"github.com/Faultbox/bifrost/pkg/gltfmesh"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "dump":
		cmdDump(args)
	case "validate", "check":
		cmdValidate(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshtool - glTF/GLB/VRM mesh inspection utility

Usage:
  meshtool <command> [options]

Commands:
  info <file>                     Show asset and per-mesh summary
  dump <file> [-mesh N] [-n N]    Decode one mesh and print its buffers
  validate <file>                 Decode and build every mesh, report errors

Examples:
  meshtool info model.vrm
  meshtool dump model.glb -mesh 0 -n 10
  meshtool validate model.gltf`)
}

// decodeOptions derives the decode settings for one asset. The CLI always
// uses auto-detected UVs and the Z-flip convention the renderer expects.
func decodeOptions(doc *gltf.Document) gltfmesh.Options {
	return gltfmesh.Options{
		Convert: gltfmesh.ConvertFlipZ,
		UVMode:  gltfmesh.ResolveUVMode(doc.Asset.Generator, nil),
	}
}

func openDocument(path string) *gltf.Document {
	doc, err := gltf.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return doc
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool info <file>")
		os.Exit(1)
	}

	doc := openDocument(args[0])
	opts := decodeOptions(doc)

	fmt.Printf("Asset:     %s\n", args[0])
	fmt.Printf("Generator: %s\n", doc.Asset.Generator)
	fmt.Printf("UV mode:   %s\n", opts.UVMode)
	fmt.Printf("Meshes:    %d\n", len(doc.Meshes))
	fmt.Printf("Accessors: %d\n", len(doc.Accessors))
	fmt.Println()

	reader := gltfmesh.NewDocumentReader(doc)
	for i := range doc.Meshes {
		desc, err := gltfmesh.MeshDescFromDocument(doc, i)
		if err != nil {
			fmt.Printf("mesh %d: %v\n", i, err)
			continue
		}
		data, err := gltfmesh.Decode(reader, desc, opts)
		if err != nil {
			fmt.Printf("mesh %d %q: %v\n", i, desc.Name, err)
			continue
		}
		fmt.Printf("mesh %d %q: %s buffers, %d vertices, %d triangles, %d submeshes",
			i, data.Name, data.Mode, data.VertexCount(), data.TriangleCount(), len(data.Submeshes))
		if data.Skin != nil {
			fmt.Printf(", skinned")
		}
		if len(data.BlendShapes) > 0 {
			fmt.Printf(", %d blend shapes", len(data.BlendShapes))
		}
		if data.NormalsMissing {
			fmt.Printf(", normals missing")
		}
		fmt.Println()
	}
}

func cmdDump(args []string) {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	meshIndex := fs.Int("mesh", 0, "Mesh index to dump")
	limit := fs.Int("n", 8, "Number of vertices to print (0 = none)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool dump <file> [-mesh N] [-n N]")
		os.Exit(1)
	}

	doc := openDocument(fs.Arg(0))
	desc, err := gltfmesh.MeshDescFromDocument(doc, *meshIndex)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	data, err := gltfmesh.Decode(gltfmesh.NewDocumentReader(doc), desc, decodeOptions(doc))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("mesh %d %q (%s buffers)\n", *meshIndex, data.Name, data.Mode)
	fmt.Printf("  vertices:  %d\n", data.VertexCount())
	fmt.Printf("  indices:   %d (%d triangles)\n", len(data.Indices), data.TriangleCount())
	for i, sm := range data.Submeshes {
		fmt.Printf("  submesh %d: indices [%d..%d) material %d\n",
			i, sm.IndexOffset, sm.IndexOffset+sm.IndexCount, sm.MaterialIndex)
	}
	for _, ch := range data.BlendShapes {
		fmt.Printf("  blend shape %q: pos %d nrm %d tan %d\n",
			ch.Name, len(ch.PositionDeltas), len(ch.NormalDeltas), len(ch.TangentDeltas))
	}

	for i := 0; i < *limit && i < len(data.Vertices); i++ {
		v := data.Vertices[i]
		fmt.Printf("  v%-5d pos %8.4f %8.4f %8.4f  nrm %6.3f %6.3f %6.3f  uv %.3f %.3f\n",
			i, v.Position[0], v.Position[1], v.Position[2],
			v.Normal[0], v.Normal[1], v.Normal[2],
			v.UV0[0], v.UV0[1])
	}
}

func cmdValidate(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool validate <file>")
		os.Exit(1)
	}

	doc := openDocument(args[0])
	opts := decodeOptions(doc)
	reader := gltfmesh.NewDocumentReader(doc)
	builder := mesh.NewBuilder()

	failures := 0
	for i := range doc.Meshes {
		desc, err := gltfmesh.MeshDescFromDocument(doc, i)
		if err != nil {
			fmt.Printf("FAIL mesh %d: %v\n", i, err)
			failures++
			continue
		}
		data, err := gltfmesh.Decode(reader, desc, opts)
		if err != nil {
			fmt.Printf("FAIL mesh %d %q: %v\n", i, desc.Name, err)
			failures++
			continue
		}
		res, err := builder.Build(context.Background(), data, mesh.BuildOptions{})
		if err != nil {
			fmt.Printf("FAIL mesh %d %q: build: %v\n", i, desc.Name, err)
			failures++
			continue
		}
		fmt.Printf("ok   mesh %d %q: %d vertices, %d submeshes, %d morph frames\n",
			i, res.Name, len(res.Vertices), len(res.Submeshes), len(res.Frames))
	}

	if failures > 0 {
		fmt.Printf("\n%d of %d meshes failed\n", failures, len(doc.Meshes))
		os.Exit(1)
	}
}
