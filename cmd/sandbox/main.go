// Command sandbox opens a window running a scene described by a prefab file,
// driven by Lua scripts and drawn with Ebiten.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/plus3/scenecs/config"
	"github.com/plus3/scenecs/ecs"
	"github.com/plus3/scenecs/ecs/debugui"
	debugui_ebiten "github.com/plus3/scenecs/ecs/debugui/ebiten"
	"github.com/plus3/scenecs/message"
	"github.com/plus3/scenecs/prefab"
	"github.com/plus3/scenecs/scene"
	sceneebiten "github.com/plus3/scenecs/scene/ebiten"
	"github.com/plus3/scenecs/script"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "cmd/sandbox/sandbox.toml", "Path to the sandbox configuration.")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	log, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer log.Sync()

	app, err := newSandbox(cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	log.Info("sandbox ready",
		zap.Int("entities", app.scene.Entities().Count()),
		zap.Int("systems", app.scene.Systems().Len()),
		zap.Duration("tick", cfg.Sim.TickRate))

	if err := ebiten.RunGame(app.game); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("run game: %w", err)
	}
	return nil
}

// loadConfig reads path, falling back to the defaults when it does not exist.
// Relative script and prefab paths are resolved against the config's directory.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		cfg = config.Defaults()
	case err != nil:
		return nil, err
	}

	dir := filepath.Dir(path)
	if !filepath.IsAbs(cfg.Scripts.Dir) {
		cfg.Scripts.Dir = filepath.Join(dir, cfg.Scripts.Dir)
	}
	if !filepath.IsAbs(cfg.Scene.Prefab) {
		cfg.Scene.Prefab = filepath.Join(dir, cfg.Scene.Prefab)
	}
	return cfg, nil
}

type sandbox struct {
	scene  *scene.Scene
	engine *script.Engine
	game   *sceneebiten.Game
	log    *zap.Logger
}

func newSandbox(cfg *config.Config, log *zap.Logger) (*sandbox, error) {
	var overlay *debugui_ebiten.ImguiBackend
	if cfg.Render.DebugUI {
		overlay = debugui_ebiten.NewImguiBackend(cfg.Window.Title, cfg.Window.Width, cfg.Window.Height)
	} else {
		ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
		ebiten.SetWindowTitle(cfg.Window.Title)
	}
	if cfg.Window.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	ebiten.SetTPS(max(1, int(time.Second/cfg.Sim.TickRate)))

	engine, err := script.NewEngine(cfg.Scripts.Dir, log.Named("lua"))
	if err != nil {
		return nil, err
	}

	bus := message.NewBus()
	s := scene.New(
		scene.WithLogger(log.Named("scene")),
		scene.WithBackend(sceneebiten.Backend{}),
		scene.WithBus(bus),
	)
	scene.AddSystem(s, script.NewSystem(s, engine, log.Named("script")))
	scene.AddSystem(s, sceneebiten.NewSpriteSystem(s))

	loader := prefab.NewLoader()
	loader.Register("sprite", spriteHook)
	named, err := loader.Load(cfg.Scene.Prefab, s)
	if err != nil {
		engine.Close()
		return nil, err
	}
	log.Debug("prefab loaded", zap.String("path", cfg.Scene.Prefab), zap.Int("named", len(named)))

	s.AddPostProcess(sceneebiten.NewTint(cfg.Render.Tint))
	s.SetPostEnabled(cfg.Render.PostEnabled)

	game := sceneebiten.NewGame(s, bus)
	game.Tick = cfg.Sim.TickRate
	if overlay != nil {
		debugui.SpawnDebugUI(s)
		game.Overlay = overlay
	}

	app := &sandbox{scene: s, engine: engine, game: game, log: log}
	game.BeforeUpdate = app.handleInput
	return app, nil
}

func (a *sandbox) handleInput() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		a.scene.SetPostEnabled(!a.scene.PostEnabled())
		a.log.Info("post processing toggled", zap.Bool("enabled", a.scene.PostEnabled()))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		a.cycleCamera()
	}
	return nil
}

// cycleCamera activates the next entity that can act as a camera.
func (a *sandbox) cycleCamera() {
	var cameras []ecs.Entity
	for e := range a.scene.Entities().Entities() {
		if scene.HasComponent[scene.Camera](a.scene, e) && scene.HasComponent[scene.Transform](a.scene, e) {
			cameras = append(cameras, e)
		}
	}
	if len(cameras) < 2 {
		return
	}
	for i, e := range cameras {
		if e == a.scene.ActiveCamera() {
			a.scene.SetActiveCamera(cameras[(i+1)%len(cameras)])
			return
		}
	}
	a.scene.SetActiveCamera(cameras[0])
}

func (a *sandbox) Close() {
	a.engine.Close()
	a.scene.Close()
}
