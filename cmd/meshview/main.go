// meshview is a minimal SDL2/OpenGL preview for decoded glTF/VRM meshes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/bifrost/internal/config"
	"github.com/Faultbox/bifrost/internal/engine/mesh"
	"github.com/Faultbox/bifrost/internal/engine/renderer"
	"github.com/Faultbox/bifrost/internal/engine/window"
	"github.com/Faultbox/bifrost/internal/logger"
	"github.com/Faultbox/bifrost/pkg/gltfmesh"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshview [options] <file.gltf|glb|vrm>")
		os.Exit(1)
	}
	path := flag.Arg(0)

	results, err := buildAll(path, cfg)
	if err != nil {
		logger.Error("failed to build meshes", zap.String("path", path), zap.Error(err))
		os.Exit(1)
	}
	if len(results) == 0 {
		logger.Error("asset contains no meshes", zap.String("path", path))
		os.Exit(1)
	}

	if err := run(path, cfg, results); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}

// buildAll decodes and packages every mesh in the asset.
func buildAll(path string, cfg *config.Config) ([]*mesh.BuildResult, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, err
	}

	opts := gltfmesh.Options{
		Convert: cfg.Import.ConvertFunc(),
		UVMode:  cfg.Import.ResolveUVMode(doc.Asset.Generator),
		Logger:  logger.Log,
	}
	logger.Info("decoding asset",
		zap.String("path", path),
		zap.String("generator", doc.Asset.Generator),
		zap.Stringer("uv_mode", opts.UVMode),
		zap.Int("meshes", len(doc.Meshes)),
	)

	reader := gltfmesh.NewDocumentReader(doc)
	builder := mesh.NewBuilder()

	var results []*mesh.BuildResult
	for i := range doc.Meshes {
		desc, err := gltfmesh.MeshDescFromDocument(doc, i)
		if err != nil {
			return nil, fmt.Errorf("mesh %d: %w", i, err)
		}
		data, err := gltfmesh.Decode(reader, desc, opts)
		if err != nil {
			return nil, err
		}
		res, err := builder.Build(context.Background(), data, mesh.BuildOptions{})
		if err != nil {
			return nil, fmt.Errorf("mesh %q: %w", data.Name, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func run(path string, cfg *config.Config, results []*mesh.BuildResult) error {
	win, err := window.New(window.Config{
		Title:      "meshview - " + path,
		Width:      cfg.Viewer.Width,
		Height:     cfg.Viewer.Height,
		Fullscreen: cfg.Viewer.Fullscreen,
		VSync:      cfg.Viewer.VSync,
	})
	if err != nil {
		return err
	}
	defer win.Close()

	rend, err := renderer.New(renderer.Config{
		Width:  cfg.Viewer.Width,
		Height: cfg.Viewer.Height,
		VSync:  cfg.Viewer.VSync,
	})
	if err != nil {
		return err
	}
	defer rend.Close()
	rend.Resize(win.GetSize())

	var meshes []*renderer.GPUMesh
	for _, res := range results {
		m, err := rend.UploadMesh(res)
		if err != nil {
			logger.Warn("skipping mesh", zap.String("mesh", res.Name), zap.Error(err))
			continue
		}
		meshes = append(meshes, m)
	}
	defer func() {
		for _, m := range meshes {
			rend.DeleteMesh(m)
		}
	}()

	center, radius := frameBounds(meshes)
	yaw := float32(0)
	dragging := false

	lastTime := time.Now()
	running := true
	for running {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch e := event.(type) {
			case *sdl.QuitEvent:
				running = false

			case *sdl.WindowEvent:
				if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
					rend.Resize(win.GetSize())
				}

			case *sdl.KeyboardEvent:
				if e.Type == sdl.KEYDOWN && e.Keysym.Scancode == sdl.SCANCODE_ESCAPE {
					running = false
				}

			case *sdl.MouseButtonEvent:
				if e.Button == sdl.BUTTON_LEFT {
					dragging = e.State == sdl.PRESSED
				}

			case *sdl.MouseMotionEvent:
				if dragging {
					yaw += float32(e.XRel) * 0.01
				}
			}
		}

		if !dragging {
			yaw += dt * 0.5
		}

		w, h := win.GetSize()
		aspect := float32(w) / float32(h)
		proj := mgl32.Perspective(mgl32.DegToRad(45), aspect, radius*0.01, radius*20)
		eye := center.Add(mgl32.Vec3{0, radius * 0.4, radius * 2.5})
		view := mgl32.LookAtV(eye, center, mgl32.Vec3{0, 1, 0})
		model := mgl32.Translate3D(center.X(), center.Y(), center.Z()).
			Mul4(mgl32.HomogRotate3DY(yaw)).
			Mul4(mgl32.Translate3D(-center.X(), -center.Y(), -center.Z()))

		rend.Begin()
		mvp := proj.Mul4(view).Mul4(model)
		for _, m := range meshes {
			rend.DrawMesh(m, mvp, model)
		}
		rend.End()

		win.SwapBuffers()
	}

	return nil
}

// frameBounds merges all mesh bounds into one camera framing volume.
func frameBounds(meshes []*renderer.GPUMesh) (mgl32.Vec3, float32) {
	if len(meshes) == 0 {
		return mgl32.Vec3{}, 1
	}

	min := meshes[0].Bounds().Min
	max := meshes[0].Bounds().Max
	for _, m := range meshes[1:] {
		b := m.Bounds()
		for i := 0; i < 3; i++ {
			if b.Min[i] < min[i] {
				min[i] = b.Min[i]
			}
			if b.Max[i] > max[i] {
				max[i] = b.Max[i]
			}
		}
	}

	center := min.Add(max).Mul(0.5)
	radius := max.Sub(center).Len()
	if radius <= 0 {
		radius = 1
	}
	return center, radius
}
