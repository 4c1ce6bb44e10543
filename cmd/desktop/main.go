package main

import (
	"flag"
	"fmt"
	"image"
	"image/draw"
	"io"
	"log"
	"log/slog"
	"os"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"smile/pkg/config"
	"smile/pkg/grid"
	"smile/pkg/loader"
	"smile/pkg/parser"
	"smile/pkg/runtime"
	"smile/pkg/utils"
)

// Cells are sized for basicfont's 7x13 face.
const (
	charWidth  = 7
	charHeight = 13
)

// keyboard is the input channel of a windowed run. Lines typed in the
// window are queued until INNUM or INSTR asks for one.
type keyboard struct {
	lines chan string
	once  sync.Once
}

func newKeyboard() *keyboard {
	return &keyboard{lines: make(chan string, 64)}
}

func (k *keyboard) ReadLine() (string, error) {
	line, ok := <-k.lines
	if !ok {
		return "", io.EOF
	}
	return line, nil
}

// Submit queues a line without blocking the UI; it reports false when the
// queue is full. It must not be called after Close.
func (k *keyboard) Submit(line string) bool {
	select {
	case k.lines <- line:
		return true
	default:
		return false
	}
}

func (k *keyboard) Close() {
	k.once.Do(func() { close(k.lines) })
}

type Game struct {
	cfg    config.DesktopConfig
	screen *grid.Buffer
	keys   *keyboard
	line   []rune

	mu     sync.Mutex
	status string

	canvas *image.RGBA   // text grid rendered on the CPU
	frame  *ebiten.Image // reused upload target for canvas
}

func newGame(cfg config.DesktopConfig) *Game {
	// The last row is kept for the line being typed.
	return &Game{
		cfg:    cfg,
		screen: grid.NewBuffer(cfg.Columns, cfg.Rows-1),
		keys:   newKeyboard(),
	}
}

// start runs the program on its own goroutine so blocking input never
// stalls the frame loop.
func (g *Game) start(prog parser.Program, labels runtime.LabelRegistry, maxSteps int, logger *slog.Logger) {
	m := runtime.NewMachine(prog, labels)
	m.Input = g.keys
	m.Output = g.screen
	m.MaxSteps = maxSteps
	m.Logger = logger
	go func() {
		status := "[program ended]"
		if err := m.Run(); err != nil {
			fmt.Fprintln(g.screen, err)
			status = "[program faulted]"
		}
		g.setStatus(status)
	}()
}

func (g *Game) setStatus(s string) {
	g.mu.Lock()
	g.status = s
	g.mu.Unlock()
}

func (g *Game) statusLine() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

func (g *Game) submit() {
	text := string(g.line)
	g.line = g.line[:0]
	if g.statusLine() != "" {
		return
	}
	fmt.Fprintln(g.screen, "> "+text)
	if !g.keys.Submit(text) {
		g.setStatus("[input queue full]")
	}
}

func (g *Game) Update() error {
	g.line = append(g.line, ebiten.AppendInputChars(nil)...)
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) && len(g.line) > 0 {
		g.line = g.line[:len(g.line)-1]
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.submit()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) && g.statusLine() != "" {
		return ebiten.Termination
	}
	return nil
}

// render paints the output grid and the input line onto canvas.
func (g *Game) render() *image.RGBA {
	w, h := g.Layout(0, 0)
	if g.canvas == nil {
		g.canvas = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	draw.Draw(g.canvas, g.canvas.Bounds(), image.Black, image.Point{}, draw.Src)

	d := &font.Drawer{Dst: g.canvas, Src: image.White, Face: basicfont.Face7x13}
	put := func(s string, col, row int) {
		d.Dot = fixed.P(col*charWidth, row*charHeight+basicfont.Face7x13.Ascent)
		d.DrawString(s)
	}
	for i, ch := range g.screen.Cells() {
		if ch == 0 {
			continue
		}
		x, y := grid.GetGridCoords(i, g.cfg.Columns)
		put(string(ch), x, y)
	}
	if g.statusLine() == "" {
		put("> "+string(g.line)+"_", 0, g.cfg.Rows-1)
	}
	return g.canvas
}

func (g *Game) Draw(screen *ebiten.Image) {
	canvas := g.render()
	if g.frame == nil {
		b := canvas.Bounds()
		g.frame = ebiten.NewImage(b.Dx(), b.Dy())
	}
	g.frame.WritePixels(canvas.Pix)
	screen.DrawImage(g.frame, nil)

	if s := g.statusLine(); s != "" {
		ebitenutil.DebugPrintAt(screen, s+" press Esc to close", 0, (g.cfg.Rows-1)*charHeight)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.cfg.Columns * charWidth, g.cfg.Rows * charHeight
}

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: desktop [-config file] <program>")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	src, err := utils.OpenSource(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to read source file: %v", err)
	}
	prog, labels, err := loader.Load(runtime.NewLineReader(src))
	src.Close()
	if err != nil {
		log.Fatalf("Failed to load program: %v", err)
	}

	logger := slog.New(slog.DiscardHandler)
	if cfg.Trace {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	game := newGame(cfg.Desktop)
	game.start(prog, labels, cfg.MaxSteps, logger)

	w, h := game.Layout(0, 0)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(int(float64(w)*cfg.Desktop.Scale), int(float64(h)*cfg.Desktop.Scale))
	ebiten.SetWindowTitle(cfg.Desktop.Title)

	err = ebiten.RunGame(game)
	game.keys.Close()
	if err != nil {
		log.Fatal(err)
	}
}
