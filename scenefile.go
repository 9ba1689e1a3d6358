package canopy

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// VecSpec is the YAML form of a Vec2.
type VecSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func (v *VecSpec) vec(def Vec2) Vec2 {
	if v == nil {
		return def
	}
	return Vec2{v.X, v.Y}
}

// RectSpec is the YAML form of a texture source rectangle in pixels.
type RectSpec struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	W int `yaml:"w"`
	H int `yaml:"h"`
}

// ObjectSpec describes one game object and its subtree.
type ObjectSpec struct {
	Name        string       `yaml:"name"`
	Position    *VecSpec     `yaml:"position"`
	Rotation    float64      `yaml:"rotation"`
	Scale       *VecSpec     `yaml:"scale"`
	Pivot       *VecSpec     `yaml:"pivot"`
	DrawOrder   float64      `yaml:"draw_order"`
	UpdateOrder float64      `yaml:"update_order"`
	Tint        string       `yaml:"tint"`
	Visible     *bool        `yaml:"visible"`
	WorldSpace  *bool        `yaml:"world_space"`
	Texture     string       `yaml:"texture"`
	Source      *RectSpec    `yaml:"source"`
	Scripts     []string     `yaml:"scripts"`
	Children    []ObjectSpec `yaml:"children"`
}

// CameraSpec configures the main camera.
type CameraSpec struct {
	Position *VecSpec `yaml:"position"`
	Zoom     float64  `yaml:"zoom"`
}

// SceneFile is a YAML scene description: a forest of object trees and an
// optional camera setup.
type SceneFile struct {
	Camera  *CameraSpec  `yaml:"camera"`
	Objects []ObjectSpec `yaml:"objects"`

	// Dir resolves relative script paths. LoadSceneFileFrom sets it to the
	// scene file's directory.
	Dir string `yaml:"-"`
}

// LoadSceneFile parses a YAML scene description.
func LoadSceneFile(data []byte) (SceneFile, error) {
	var sf SceneFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return SceneFile{}, fmt.Errorf("canopy: unmarshal scene: %w", err)
	}
	return sf, nil
}

// LoadSceneFileFrom reads and parses a scene file from disk.
func LoadSceneFileFrom(path string) (SceneFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SceneFile{}, fmt.Errorf("canopy: load scene %s: %w", path, err)
	}
	sf, err := LoadSceneFile(data)
	if err != nil {
		return SceneFile{}, fmt.Errorf("canopy: load scene %s: %w", path, err)
	}
	sf.Dir = filepath.Dir(path)
	return sf, nil
}

// Spawn instantiates every object tree in sf and applies the camera setup.
// Texture keys resolve through textures. It returns the root objects in file
// order. On error every object spawned so far is destroyed.
func (e *Engine) Spawn(sf SceneFile, textures map[string]Texture) ([]*GameObject, error) {
	var roots []*GameObject
	fail := func(err error) ([]*GameObject, error) {
		for _, r := range roots {
			r.Destroy()
		}
		return nil, err
	}
	for i := range sf.Objects {
		g, err := e.spawnObject(&sf, &sf.Objects[i], nil, textures)
		if g != nil {
			roots = append(roots, g)
		}
		if err != nil {
			return fail(err)
		}
	}
	if c := sf.Camera; c != nil {
		if c.Zoom < 0 {
			return fail(fmt.Errorf("canopy: spawn camera: zoom must be positive, got %v", c.Zoom))
		}
		e.camera.Position = c.Position.vec(e.camera.Position)
		if c.Zoom != 0 {
			e.camera.Zoom = c.Zoom
		}
	}
	return roots, nil
}

// spawnObject creates spec under parent. A non-nil object is returned along
// with an error when it was created before the failure, so the caller can
// destroy it.
func (e *Engine) spawnObject(sf *SceneFile, spec *ObjectSpec, parent *GameObject, textures map[string]Texture) (*GameObject, error) {
	g := e.NewGameObject(spec.Name)
	if parent != nil {
		if err := g.SetParent(parent); err != nil {
			return g, err
		}
	}
	g.SetPosition(spec.Position.vec(Vec2{}))
	g.SetRotation(spec.Rotation)
	if err := g.SetScale(spec.Scale.vec(Vec2{1, 1})); err != nil {
		return g, err
	}
	g.Pivot = spec.Pivot.vec(g.Pivot)
	g.DrawOrder = spec.DrawOrder
	g.SetUpdateOrder(spec.UpdateOrder)
	if spec.Tint != "" {
		c, err := parseColor(spec.Tint)
		if err != nil {
			return g, fmt.Errorf("canopy: spawn %q: %w", spec.Name, err)
		}
		g.Tint = c
	}
	if spec.Visible != nil {
		g.Visible = *spec.Visible
	}
	if spec.WorldSpace != nil {
		g.WorldSpace = *spec.WorldSpace
	}
	if spec.Texture != "" {
		tex, ok := textures[spec.Texture]
		if !ok {
			return g, fmt.Errorf("canopy: spawn %q: unknown texture %q", spec.Name, spec.Texture)
		}
		g.Texture = tex
	}
	if s := spec.Source; s != nil {
		r := image.Rect(s.X, s.Y, s.X+s.W, s.Y+s.H)
		g.SourceRect = &r
	}
	for _, p := range spec.Scripts {
		if !filepath.IsAbs(p) && sf.Dir != "" {
			p = filepath.Join(sf.Dir, p)
		}
		sc, err := LoadTengoScript(p)
		if err != nil {
			return g, err
		}
		if err := g.AddScript(sc); err != nil {
			return g, err
		}
	}
	for i := range spec.Children {
		child, err := e.spawnObject(sf, &spec.Children[i], g, textures)
		if err != nil {
			// A child that never reached g is outside g's cascade.
			if child != nil {
				child.Destroy()
			}
			return g, err
		}
	}
	return g, nil
}
