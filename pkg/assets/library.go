package assets

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/taigrr/noneuclid/pkg/models"
	"github.com/taigrr/noneuclid/pkg/render"
)

// meshExts are tried in order when resolving a mesh name against the asset
// directory.
var meshExts = []string{".obj", ".glb", ".gltf"}

var textureExts = []string{".png", ".jpg", ".jpeg"}

// meshTexturePrefix names textures taken from the image embedded in a mesh.
const meshTexturePrefix = "mesh:"

// Library bundles the mesh and texture registries used by a scene.
type Library struct {
	dir      string
	logger   *log.Logger
	Meshes   *Registry[*models.Mesh]
	Textures *Registry[*render.Texture]
}

// Option configures a Library.
type Option func(*Library)

// WithDir sets the directory searched before the built-in resources.
func WithDir(dir string) Option {
	return func(l *Library) { l.dir = dir }
}

// WithLogger sets the logger used for load and eviction events.
func WithLogger(logger *log.Logger) Option {
	return func(l *Library) { l.logger = logger }
}

// NewLibrary creates a library whose registries share the given policy.
func NewLibrary(policy Policy, opts ...Option) *Library {
	l := &Library{logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(l)
	}
	l.Meshes = NewRegistry(l.loadMesh, policy)
	l.Textures = NewRegistry(l.loadTexture, policy)
	l.Meshes.OnEvict = func(name string) { l.logger.Debug("mesh evicted", "name", name) }
	l.Textures.OnEvict = func(name string) { l.logger.Debug("texture evicted", "name", name) }
	return l
}

// Dir returns the asset directory, or "" when only built-ins are used.
func (l *Library) Dir() string {
	return l.dir
}

// Mesh acquires the named mesh.
func (l *Library) Mesh(name string) (*Handle[*models.Mesh], error) {
	return l.Meshes.Acquire(name)
}

// Texture acquires the named texture.
func (l *Library) Texture(name string) (*Handle[*render.Texture], error) {
	return l.Textures.Acquire(name)
}

// MeshTexture acquires the image embedded in the named mesh as a texture.
// It fails with ErrNotFound when the mesh carries no image.
func (l *Library) MeshTexture(mesh string) (*Handle[*render.Texture], error) {
	return l.Textures.Acquire(meshTexturePrefix + mesh)
}

// Purge drops every unreferenced mesh and texture.
func (l *Library) Purge() int {
	return l.Meshes.Purge() + l.Textures.Purge()
}

func (l *Library) loadMesh(name string) (*models.Mesh, error) {
	if path, ok := l.find(name, meshExts); ok {
		var (
			mesh *models.Mesh
			err  error
		)
		if filepath.Ext(path) == ".obj" {
			mesh, err = models.LoadOBJ(path)
		} else {
			loader := models.NewGLTFLoader()
			loader.Logger = l.logger
			mesh, err = loader.Load(path)
		}
		if err != nil {
			return nil, err
		}
		l.logger.Debug("mesh loaded", "name", name, "path", path,
			"triangles", mesh.TriangleCount(), "colliders", len(mesh.Colliders))
		return mesh, nil
	}

	mesh, ok, err := models.Builtin(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("mesh %q: %w", name, ErrNotFound)
	}
	l.logger.Debug("mesh built", "name", name,
		"triangles", mesh.TriangleCount(), "colliders", len(mesh.Colliders))
	return mesh, nil
}

func (l *Library) loadTexture(name string) (*render.Texture, error) {
	if mesh, ok := strings.CutPrefix(name, meshTexturePrefix); ok {
		return l.loadMeshTexture(mesh)
	}
	if path, ok := l.find(name, textureExts); ok {
		tex, err := render.LoadTexture(path)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("texture loaded", "name", name, "path", path)
		return tex, nil
	}
	if tex, ok := builtinTexture(name); ok {
		return tex, nil
	}
	return nil, fmt.Errorf("texture %q: %w", name, ErrNotFound)
}

func (l *Library) loadMeshTexture(name string) (*render.Texture, error) {
	h, err := l.Mesh(name)
	if err != nil {
		return nil, err
	}
	defer h.Release()
	img := h.Get().Image
	if img == nil {
		return nil, fmt.Errorf("image of mesh %q: %w", name, ErrNotFound)
	}
	tex := render.TextureFromImage(img)
	l.logger.Debug("texture from mesh", "mesh", name, "width", tex.Width, "height", tex.Height)
	return tex, nil
}

// find looks for name in the asset directory, as given or with one of exts.
func (l *Library) find(name string, exts []string) (string, bool) {
	if l.dir == "" {
		return "", false
	}
	candidates := []string{filepath.Join(l.dir, name)}
	for _, ext := range exts {
		candidates = append(candidates, filepath.Join(l.dir, name+ext))
	}
	for _, path := range candidates {
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, true
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			l.logger.Warn("stat asset", "path", path, "err", err)
		}
	}
	return "", false
}

// builtinTexture returns the procedural texture with the given name.
func builtinTexture(name string) (*render.Texture, bool) {
	light := render.RGB(200, 200, 200)
	switch name {
	case "checker_gray":
		return render.NewCheckerTexture(64, 64, 8, light, render.RGB(120, 120, 120)), true
	case "checker_green":
		return render.NewCheckerTexture(64, 64, 8, render.RGB(90, 170, 80), render.RGB(60, 120, 55)), true
	case "checker_red":
		return render.NewCheckerTexture(64, 64, 8, render.RGB(200, 90, 80), render.RGB(140, 60, 55)), true
	case "checker_blue":
		return render.NewCheckerTexture(64, 64, 8, render.RGB(90, 120, 210), render.RGB(60, 80, 150)), true
	case "checker_gold":
		return render.NewCheckerTexture(64, 64, 8, render.RGB(220, 190, 90), render.RGB(160, 130, 60)), true
	case "white":
		return render.NewCheckerTexture(1, 1, 1, render.ColorWhite, render.ColorWhite), true
	}
	return nil, false
}

// BuiltinTextureNames lists the procedural textures.
func BuiltinTextureNames() []string {
	return []string{"checker_blue", "checker_gold", "checker_gray", "checker_green", "checker_red", "white"}
}
