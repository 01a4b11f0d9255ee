package bot

import (
	"testing"
	"tgbot_backend/internal/model"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHeatmapRange(t *testing.T) {
	now := time.Date(2024, 6, 15, 13, 30, 0, 0, time.UTC)

	from, to := HeatmapRange(HeatmapDay, now)
	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC), to)

	from, to = HeatmapRange(HeatmapMonth, now)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), to)

	from, to = HeatmapRange(HeatmapYear, now)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), to)
}

func TestRenderHeatmapDay(t *testing.T) {
	now := time.Date(2024, 6, 15, 13, 30, 0, 0, time.UTC)
	messages := []model.Message{
		{CreatedAt: time.Date(2024, 6, 15, 9, 5, 0, 0, time.UTC)},
		{CreatedAt: time.Date(2024, 6, 15, 9, 40, 0, 0, time.UTC)},
		{CreatedAt: time.Date(2024, 6, 15, 21, 0, 0, 0, time.UTC)},
	}

	out := RenderHeatmap(HeatmapDay, messages, now)
	assert.Contains(t, out, "2024-06-15")
	assert.Contains(t, out, "09时")
	assert.Contains(t, out, "21时")
	assert.Contains(t, out, "共3条消息")
}

func TestRenderHeatmapEmpty(t *testing.T) {
	now := time.Date(2024, 6, 15, 13, 30, 0, 0, time.UTC)
	out := RenderHeatmap(HeatmapMonth, nil, now)
	assert.Contains(t, out, "没有任何消息")
}
