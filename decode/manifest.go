package decode

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/tanema/gween/ease"
	"golang.org/x/sync/errgroup"

	mix "github.com/thelabcat/solar-rift-music-player"
)

// Manifest describes a set of pieces and their stem files. It is the only
// configuration surface of the engine: one validated record per layer,
// produced at load time and never consulted again during playback.
type Manifest struct {
	Pieces []PieceSpec `json:"pieces"`
}

// PieceSpec describes one piece.
type PieceSpec struct {
	Name string `json:"name"`
	// TrimHead and TrimTail are explicit silence paddings in seconds, as in
	// the original Solar Rift trim table. When both are zero the preparer
	// scans for silence instead.
	TrimHead float64     `json:"trimHead"`
	TrimTail float64     `json:"trimTail"`
	Layers   []LayerSpec `json:"layers"`
}

// LayerSpec describes one stem of a piece.
type LayerSpec struct {
	File string  `json:"file"`
	Name string  `json:"name"`
	Gain float64 `json:"gain"`
	Pan  float64 `json:"pan"`
	// Curve is optional. When no layer of a piece declares a curve, the
	// piece gets the classic ladder mapping: first stem always on, later
	// stems fading in as danger rises.
	Curve *CurveSpec `json:"curve"`
}

// CurveSpec is the JSON form of a danger-level activation curve.
type CurveSpec struct {
	Lo   float64 `json:"lo"`
	Hi   float64 `json:"hi"`
	Fade float64 `json:"fade"`
	Ease string  `json:"ease"`
}

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	if len(m.Pieces) == 0 {
		return fmt.Errorf("no pieces")
	}
	seen := make(map[string]bool)
	for _, p := range m.Pieces {
		if p.Name == "" {
			return fmt.Errorf("piece without name")
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate piece %q", p.Name)
		}
		seen[p.Name] = true
		if len(p.Layers) == 0 {
			return fmt.Errorf("piece %q has no layers", p.Name)
		}
		if p.TrimHead < 0 || p.TrimTail < 0 {
			return fmt.Errorf("piece %q: negative trim", p.Name)
		}
		for _, l := range p.Layers {
			if l.File == "" {
				return fmt.Errorf("piece %q: layer without file", p.Name)
			}
			if l.Pan < -1 || l.Pan > 1 {
				return fmt.Errorf("piece %q: layer %q: pan %v out of range", p.Name, l.File, l.Pan)
			}
			if l.Gain < 0 {
				return fmt.Errorf("piece %q: layer %q: negative gain", p.Name, l.File)
			}
			if c := l.Curve; c != nil {
				if c.Lo < 0 || c.Hi > 1 || c.Lo >= c.Hi {
					return fmt.Errorf("piece %q: layer %q: curve window [%v, %v] invalid", p.Name, l.File, c.Lo, c.Hi)
				}
				if c.Fade < 0 || c.Fade > c.Hi-c.Lo {
					return fmt.Errorf("piece %q: layer %q: curve fade %v invalid", p.Name, l.File, c.Fade)
				}
				if _, err := easeByName(c.Ease); err != nil {
					return fmt.Errorf("piece %q: layer %q: %w", p.Name, l.File, err)
				}
			}
		}
	}
	return nil
}

func easeByName(name string) (ease.TweenFunc, error) {
	switch name {
	case "", "linear":
		return nil, nil
	case "equalpower":
		return mix.EqualPower, nil
	case "smooth":
		return ease.InOutQuad, nil
	case "sine":
		return ease.InOutSine, nil
	}
	return nil, fmt.Errorf("unknown ease %q", name)
}

func (p PieceSpec) curves() ([]mix.Curve, error) {
	declared := false
	for _, l := range p.Layers {
		if l.Curve != nil {
			declared = true
			break
		}
	}
	if !declared {
		if len(p.Layers) == 1 {
			return []mix.Curve{{Lo: 0, Hi: 1}}, nil
		}
		return mix.LadderCurves(len(p.Layers)), nil
	}

	curves := make([]mix.Curve, len(p.Layers))
	for i, l := range p.Layers {
		if l.Curve == nil {
			return nil, fmt.Errorf("layer %q has no curve while others do", l.File)
		}
		f, err := easeByName(l.Curve.Ease)
		if err != nil {
			return nil, err
		}
		c := mix.Window(float32(l.Curve.Lo), float32(l.Curve.Hi), float32(l.Curve.Fade))
		c.Ease = f
		curves[i] = c
	}
	return curves, nil
}

// Prepare decodes every stem file relative to dir and builds the pieces.
// Files of one piece are decoded concurrently. The returned map is keyed by
// piece name.
func (m *Manifest) Prepare(dir string, trim mix.TrimConfig) (map[string]*mix.Piece, error) {
	pieces := make(map[string]*mix.Piece, len(m.Pieces))
	for _, spec := range m.Pieces {
		p, err := spec.prepare(dir, trim)
		if err != nil {
			return nil, err
		}
		pieces[p.Name()] = p
	}
	return pieces, nil
}

func (spec PieceSpec) prepare(dir string, trim mix.TrimConfig) (*mix.Piece, error) {
	curves, err := spec.curves()
	if err != nil {
		return nil, fmt.Errorf("piece %q: %w", spec.Name, err)
	}

	raw := make([]mix.RawLayer, len(spec.Layers))
	var g errgroup.Group
	for i, l := range spec.Layers {
		i, l := i, l
		g.Go(func() error {
			clip, err := File(filepath.Join(dir, l.File))
			if err != nil {
				return fmt.Errorf("piece %q: %w", spec.Name, err)
			}
			name := l.Name
			if name == "" {
				name = l.File
			}
			raw[i] = mix.RawLayer{
				Name:  name,
				Clip:  clip,
				Gain:  float32(l.Gain),
				Pan:   float32(l.Pan),
				Curve: curves[i],
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if spec.TrimHead > 0 || spec.TrimTail > 0 {
		trim.Head = time.Duration(spec.TrimHead * float64(time.Second))
		trim.Tail = time.Duration(spec.TrimTail * float64(time.Second))
	}
	p, err := mix.PreparePiece(spec.Name, raw, trim)
	if err != nil {
		return nil, err
	}
	log.Printf("prepared piece %s: %d layers, loop %v",
		p.Name(), len(p.Layers()), mix.TzToDuration(p.Length(), p.SampleRate()))
	return p, nil
}
