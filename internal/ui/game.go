package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"todo-game/internal/analytics"
	"todo-game/internal/game"
)

// gameTickMsg drives one engine step. Ticks whose seq is stale belong to
// a closed or finished round and are dropped, which stops the loop.
type gameTickMsg struct {
	seq int
}

func gameTick(seq int) tea.Cmd {
	return tea.Tick(game.TickInterval, func(time.Time) tea.Msg {
		return gameTickMsg{seq: seq}
	})
}

// Playfield size in terminal cells.
const (
	fieldCols = 64
	fieldRows = 7
)

func (m Model) updateGame(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.game.Stop()
		m.gameSeq++
		return m, tea.Quit
	case "esc", "q":
		m.game.Stop()
		m.gameSeq++
		if m.gameOnly {
			return m, tea.Quit
		}
		m.mode = modeList
		return m, nil
	case " ", "up", "w", "enter":
		switch m.game.State() {
		case game.Playing:
			m.game.Jump()
			return m, nil
		default:
			m.game.Start()
			m.gameSeq++
			return m, tea.Batch(
				gameTick(m.gameSeq),
				sendEvent(m.api, analytics.ClientEvent{Name: analytics.GameStarted}),
			)
		}
	}
	return m, nil
}

func (m Model) updateGameTick(msg gameTickMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.gameSeq || m.mode != modeGame || m.game.State() != game.Playing {
		return m, nil
	}
	m.game.Step()
	if m.game.State() == game.GameOver {
		score := m.game.Score()
		return m, sendEvent(m.api, analytics.ClientEvent{Name: analytics.GameOver, Score: &score})
	}
	return m, gameTick(m.gameSeq)
}

func (m Model) gameView() string {
	var b strings.Builder
	b.WriteString(gameTitleStyle.Render("MINI GAME"))
	b.WriteString("\n\n")

	switch m.game.State() {
	case game.Ready:
		b.WriteString("  PRESS SPACE TO START\n")
		b.WriteString("  SPACE TO JUMP, AVOID OBSTACLES\n")
		b.WriteString("  GET HIGH SCORE!\n")
	case game.Playing:
		b.WriteString(fmt.Sprintf("  SCORE: %d\n\n", m.game.Score()))
		b.WriteString(renderField(m.game))
	case game.GameOver:
		score := m.game.Score()
		b.WriteString("  GAME OVER\n\n")
		b.WriteString(fmt.Sprintf("  FINAL SCORE: %d\n", score))
		b.WriteString("  " + game.Rating(score) + "\n\n")
		b.WriteString("  SPACE TO PLAY AGAIN\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("space: jump | esc: close"))
	return panelStyle.Render(b.String())
}

// renderField draws the engine state onto a fieldCols x fieldRows grid.
// The bottom row is the ground.
func renderField(e *game.Engine) string {
	cfg := e.Config()
	scale := cfg.SpawnX / float64(fieldCols-1)
	rowHeight := math.Abs(cfg.JumpPower*cfg.JumpPower/(2*cfg.Gravity)) / float64(fieldRows-2)

	grid := make([][]string, fieldRows)
	for r := range grid {
		grid[r] = make([]string, fieldCols)
		for c := range grid[r] {
			grid[r][c] = " "
		}
	}
	for c := 0; c < fieldCols; c++ {
		grid[fieldRows-1][c] = groundStyle.Render("=")
	}

	col := func(x float64) int { return int(math.Round(x / scale)) }

	for _, o := range e.Obstacles() {
		for c := col(o.X); c <= col(o.X+cfg.ObstacleWidth); c++ {
			if c >= 0 && c < fieldCols {
				grid[fieldRows-2][c] = obstacleStyle.Render("#")
			}
		}
	}

	row := fieldRows - 2 - int(math.Round(-e.PlayerY()/rowHeight))
	if row < 0 {
		row = 0
	}
	for c := col(cfg.PlayerX); c <= col(cfg.PlayerX+cfg.PlayerWidth); c++ {
		if c >= 0 && c < fieldCols {
			grid[row][c] = playerStyle.Render("@")
		}
	}

	var b strings.Builder
	for _, r := range grid {
		b.WriteString("  ")
		b.WriteString(strings.Join(r, ""))
		b.WriteString("\n")
	}
	return b.String()
}
