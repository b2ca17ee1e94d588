package services

import (
	"testing"

	"github.com/makkenno/ittasu/domain/config"
	"github.com/makkenno/ittasu/domain/core/entities"
	"github.com/makkenno/ittasu/domain/core/valueobjects"
	"github.com/stretchr/testify/assert"
)

func TestFindFreePosition(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	center := valueobjects.Position{X: 100, Y: 100}

	tests := []struct {
		name     string
		siblings []entities.TaskNode
		want     valueobjects.Position
	}{
		{
			name: "empty canvas keeps the center",
			want: center,
		},
		{
			name:     "sibling far below does not block",
			siblings: []entities.TaskNode{nodeAt("s", nil, false, 100, 400)},
			want:     center,
		},
		{
			name:     "occupied center moves right past the sibling and spacing",
			siblings: []entities.TaskNode{nodeAt("s", nil, false, 100, 100)},
			want:     valueobjects.Position{X: 350, Y: 100},
		},
		{
			name: "two siblings side by side",
			siblings: []entities.TaskNode{
				nodeAt("s1", nil, false, 100, 100),
				nodeAt("s2", nil, false, 350, 120),
			},
			want: valueobjects.Position{X: 600, Y: 100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindFreePosition(cfg, center, tt.siblings))
		})
	}
}

func TestFindFreePositionFallsBackToCenter(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	cfg.FreePositionMaxProbes = 3
	center := valueobjects.Position{}
	wall := []entities.TaskNode{nodeAt("wall", nil, false, 0, 0)}

	assert.Equal(t, center, FindFreePosition(cfg, center, wall))
}
