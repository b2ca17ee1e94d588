package services

import (
	"github.com/makkenno/ittasu/domain/config"
	"github.com/makkenno/ittasu/domain/core/entities"
	"github.com/makkenno/ittasu/domain/core/valueobjects"
)

// FindFreePosition scans rightwards from center for the first node-sized slot
// that does not overlap any sibling (including spacing). Falls back to center.
func FindFreePosition(cfg *config.DomainConfig, center valueobjects.Position, siblings []entities.TaskNode) valueobjects.Position {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	for i := 0; i < cfg.FreePositionMaxProbes; i++ {
		candidate := center.Translate(float64(i)*cfg.FreePositionStep, 0)
		if !overlapsAny(cfg, candidate, siblings) {
			return candidate
		}
	}
	return center
}

func overlapsAny(cfg *config.DomainConfig, p valueobjects.Position, siblings []entities.TaskNode) bool {
	w, h, gap := cfg.NodeWidth, cfg.NodeHeight, cfg.NodeSpacing
	for _, n := range siblings {
		q := n.Position
		if p.X < q.X+w+gap && p.X+w+gap > q.X && p.Y < q.Y+h+gap && p.Y+h+gap > q.Y {
			return true
		}
	}
	return false
}
