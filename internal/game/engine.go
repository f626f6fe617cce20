// Package game implements the jump-over-obstacles minigame as a
// fixed-tick simulation. The engine has no clock of its own: the caller
// schedules Step, one call per tick.
package game

import "time"

// TickInterval is the wall-clock period of one Step at 60 Hz.
const TickInterval = time.Second / 60

// State is the phase of a round.
type State int

const (
	Ready State = iota
	Playing
	GameOver
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Playing:
		return "playing"
	case GameOver:
		return "gameover"
	default:
		return "unknown"
	}
}

// Config holds the physics and layout constants. Heights grow downward:
// y=0 is the ground and a jumping player has negative y.
type Config struct {
	Gravity       float64
	JumpPower     float64
	SpawnInterval int // ticks between obstacles
	SpawnX        float64
	PlayerX       float64
	PlayerWidth   float64
	ObstacleWidth float64
	HitInset      float64 // shrinks the player box on both sides
	GroundSlack   float64 // collisions count while y >= -GroundSlack
	PassMargin    float64 // an obstacle scores once x < PlayerX-PassMargin
	DespawnX      float64
	StartSpeed    float64
	SpeedStep     float64
	SpeedEvery    int // points between speed-ups
	MaxSpeed      float64
}

// DefaultConfig is the tuning of the shipped game.
func DefaultConfig() Config {
	return Config{
		Gravity:       0.6,
		JumpPower:     -12,
		SpawnInterval: 120,
		SpawnX:        800,
		PlayerX:       100,
		PlayerWidth:   40,
		ObstacleWidth: 30,
		HitInset:      10,
		GroundSlack:   5,
		PassMargin:    20,
		DespawnX:      -50,
		StartSpeed:    3,
		SpeedStep:     0.5,
		SpeedEvery:    10,
		MaxSpeed:      8,
	}
}

// Obstacle is a block scrolling toward the player.
type Obstacle struct {
	X      float64
	Passed bool
}

// Engine is one minigame session. It is not safe for concurrent use.
type Engine struct {
	cfg Config

	state     State
	tick      int
	score     int
	y, vy     float64
	jumping   bool
	speed     float64
	lastSpeed int
	obstacles []Obstacle
}

// New returns an engine in the Ready state.
func New(cfg Config) *Engine {
	e := &Engine{cfg: cfg}
	e.Reset()
	return e
}

// Reset returns to Ready with a clean board.
func (e *Engine) Reset() {
	e.state = Ready
	e.tick = 0
	e.score = 0
	e.y, e.vy = 0, 0
	e.jumping = false
	e.speed = e.cfg.StartSpeed
	e.lastSpeed = 0
	e.obstacles = nil
}

// Start begins a new round from any state.
func (e *Engine) Start() {
	e.Reset()
	e.state = Playing
}

// Stop abandons a running round and returns to Ready.
func (e *Engine) Stop() {
	if e.state == Playing {
		e.Reset()
	}
}

// Jump launches the player. It does nothing unless the round is running
// and the player is on the ground.
func (e *Engine) Jump() bool {
	if e.state != Playing || e.jumping || e.y < 0 {
		return false
	}
	e.vy = e.cfg.JumpPower
	e.jumping = true
	return true
}

// Step advances the simulation by one tick. It is a no-op unless the
// round is running.
func (e *Engine) Step() {
	if e.state != Playing {
		return
	}
	e.tick++

	y := e.y + e.vy
	vy := e.vy + e.cfg.Gravity
	if y >= 0 {
		y, vy = 0, 0
		e.jumping = false
	}
	e.y, e.vy = y, vy

	left := e.cfg.PlayerX + e.cfg.HitInset
	right := e.cfg.PlayerX + e.cfg.PlayerWidth - e.cfg.HitInset

	kept := e.obstacles[:0]
	for _, o := range e.obstacles {
		o.X -= e.speed
		if o.X+e.cfg.ObstacleWidth > left && o.X < right && e.y >= -e.cfg.GroundSlack {
			e.state = GameOver
			e.obstacles = nil
			return
		}
		if !o.Passed && o.X < e.cfg.PlayerX-e.cfg.PassMargin {
			o.Passed = true
			e.score++
		}
		if o.X > e.cfg.DespawnX {
			kept = append(kept, o)
		}
	}
	e.obstacles = kept

	if e.cfg.SpeedEvery > 0 && e.score > e.lastSpeed && e.score%e.cfg.SpeedEvery == 0 {
		e.speed = min(e.speed+e.cfg.SpeedStep, e.cfg.MaxSpeed)
		e.lastSpeed = e.score
	}

	if e.cfg.SpawnInterval > 0 && e.tick%e.cfg.SpawnInterval == 0 {
		e.obstacles = append(e.obstacles, Obstacle{X: e.cfg.SpawnX})
	}
}

func (e *Engine) State() State   { return e.state }
func (e *Engine) Score() int     { return e.score }
func (e *Engine) Tick() int      { return e.tick }
func (e *Engine) Speed() float64 { return e.speed }
func (e *Engine) Config() Config { return e.cfg }

// PlayerY is the player's height: 0 on the ground, negative in the air.
func (e *Engine) PlayerY() float64 { return e.y }

// Grounded reports whether the player can jump.
func (e *Engine) Grounded() bool { return !e.jumping && e.y >= 0 }

// Obstacles returns a copy of the obstacles on screen.
func (e *Engine) Obstacles() []Obstacle {
	return append([]Obstacle(nil), e.obstacles...)
}

// Rating is the message shown next to a final score.
func Rating(score int) string {
	switch {
	case score < 5:
		return "KEEP PRACTICING!"
	case score < 15:
		return "GOOD JOB!"
	case score < 30:
		return "GREAT!"
	default:
		return "AMAZING!"
	}
}
