// assettool inspects built assets and test-uploads textures to the GPU.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/assetforge/internal/assetbuild"
	"github.com/Faultbox/assetforge/internal/config"
	"github.com/Faultbox/assetforge/internal/engine/texture"
	"github.com/Faultbox/assetforge/internal/engine/window"
	"github.com/Faultbox/assetforge/internal/logger"
	"github.com/Faultbox/assetforge/pkg/formats"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "dds":
		cmdDDS(args)
	case "mesh":
		cmdMesh(args)
	case "upload":
		cmdUpload(args)
	case "init-config":
		cmdInitConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`assettool - texture and mesh asset utility

Usage:
  assettool <command> [options]

Commands:
  dds <file.dds>                  Show DDS header and mip chain
  mesh [-v] <file.mesh>           Show packed mesh counts (-v lists records)
  upload [-unit N] <file.dds>     Upload a texture through OpenGL, bind it, release it
  init-config [path]              Write the default config file

Examples:
  assettool dds textures/stone.dds
  assettool mesh -v built/cube.mesh
  assettool upload -unit 2 textures/stone.dds`)
}

func fail(path string, err error) {
	fmt.Fprintln(os.Stderr, assetbuild.ErrorLine(path, err))
	os.Exit(1)
}

func cmdDDS(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: assettool dds <file.dds>")
		os.Exit(1)
	}
	path := args[0]

	dds, err := formats.ParseDDSFile(path)
	if err != nil {
		fail(path, err)
	}
	img := dds.Image

	fmt.Printf("File:    %s\n", path)
	fmt.Printf("FourCC:  %s\n", dds.FourCC)
	fmt.Printf("Format:  %s\n", img.Format)
	fmt.Printf("Size:    %dx%d\n", img.Width, img.Height)
	fmt.Printf("Mips:    %d\n", img.MipLevelCount)
	fmt.Printf("Payload: %d bytes\n", img.ImageDataSize)
	fmt.Println()

	it := formats.NewMipIterator(img)
	for it.Next() {
		lvl := it.Level()
		fmt.Printf("  level %-2d %5dx%-5d offset %-8d %d bytes\n",
			lvl.Index, lvl.Width, lvl.Height, lvl.Offset, lvl.Length)
	}
	if err := it.Err(); err != nil {
		fail(path, err)
	}
}

func cmdMesh(args []string) {
	fs := flag.NewFlagSet("mesh", flag.ExitOnError)
	verbose := fs.Bool("v", false, "List every vertex and index")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: assettool mesh [-v] <file.mesh>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	mesh, err := formats.ParseMeshFile(path)
	if err != nil {
		fail(path, err)
	}

	fmt.Printf("File:      %s\n", path)
	fmt.Printf("Vertices:  %d\n", len(mesh.Vertices))
	fmt.Printf("Indices:   %d\n", len(mesh.Indices))
	fmt.Printf("Triangles: %d\n", len(mesh.Indices)/3)
	fmt.Printf("Size:      %d bytes\n", mesh.Size())

	if !*verbose {
		return
	}
	fmt.Println()
	for i, v := range mesh.Vertices {
		fmt.Printf("  v%-4d pos(%g, %g, %g) uv(%g, %g) rgba(%d, %d, %d, %d)\n",
			i, v.X, v.Y, v.Z, v.U, v.V, v.R, v.G, v.B, v.A)
	}
	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		fmt.Printf("  tri %-4d %d %d %d\n", i/3, mesh.Indices[i], mesh.Indices[i+1], mesh.Indices[i+2])
	}
}

func cmdUpload(args []string) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	unit := fs.Int("unit", -1, "Texture unit to bind (default from config)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: assettool upload [-unit N] <file.dds>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		fail(path, fmt.Errorf("config: %w", err))
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fail(path, err)
	}
	defer logger.Sync()

	if *unit >= 0 {
		cfg.Texture.Unit = uint32(*unit)
	}

	if err := upload(cfg, path); err != nil {
		logger.Sync()
		fail(path, err)
	}
}

func upload(cfg *config.Config, path string) error {
	dds, err := formats.ParseDDSFile(path)
	if err != nil {
		return err
	}

	win, err := window.New(window.Config{
		Title:  cfg.Window.Title,
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		Hidden: cfg.Window.Hidden,
	})
	if err != nil {
		return err
	}
	defer win.Close()

	if err := gl.Init(); err != nil {
		return fmt.Errorf("OpenGL init failed: %w", err)
	}
	logger.Debug("OpenGL ready", zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))))

	tex, err := texture.CreateFromBlocks(texture.NewGLBackend(), path, dds.Image)
	if err != nil {
		return err
	}
	defer tex.Release()

	if err := tex.Bind(cfg.Texture.Unit); err != nil {
		return err
	}

	fmt.Printf("Uploaded %s: %s %dx%d, %d levels, texture %d on unit %d\n",
		path, dds.Image.Format, dds.Image.Width, dds.Image.Height, tex.Levels(), tex.ID(), cfg.Texture.Unit)
	return nil
}

func cmdInitConfig(args []string) {
	cfg := config.Default()
	var err error
	path := ""
	if len(args) > 0 {
		path = args[0]
		err = cfg.SaveTo(path)
	} else {
		path = filepath.Join(config.ConfigDir(), "config.yaml")
		err = cfg.Save()
	}
	if err != nil {
		fail(path, err)
	}
	fmt.Printf("Wrote default config to %s\n", path)
}
