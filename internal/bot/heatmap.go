package bot

import (
	"fmt"
	"strings"
	"tgbot_backend/internal/model"
	"time"
)

// 活跃度图的粒度
const (
	HeatmapDay   = "d"
	HeatmapMonth = "m"
	HeatmapYear  = "y"
)

const heatmapBarWidth = 20

// HeatmapRange 返回给定粒度覆盖的时间区间，左闭右开
func HeatmapRange(mode string, now time.Time) (time.Time, time.Time) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch mode {
	case HeatmapMonth:
		from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return from, from.AddDate(0, 1, 0)
	case HeatmapYear:
		from := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		return from, from.AddDate(1, 0, 0)
	default:
		return today, today.AddDate(0, 0, 1)
	}
}

// RenderHeatmap 把一段时间内的消息渲染成文本柱状图。
// 日视图按小时分桶，月视图按天，年视图按月。
func RenderHeatmap(mode string, messages []model.Message, now time.Time) string {
	var sb strings.Builder

	switch mode {
	case HeatmapMonth:
		daysInMonth := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
		buckets := make([]int, daysInMonth)
		for _, m := range messages {
			buckets[m.CreatedAt.Day()-1]++
		}
		sb.WriteString(fmt.Sprintf("%d年%d月群活跃度\n", now.Year(), now.Month()))
		renderBuckets(&sb, buckets, func(i int) string { return fmt.Sprintf("%02d日", i+1) })
	case HeatmapYear:
		buckets := make([]int, 12)
		for _, m := range messages {
			buckets[int(m.CreatedAt.Month())-1]++
		}
		sb.WriteString(fmt.Sprintf("%d年群活跃度\n", now.Year()))
		renderBuckets(&sb, buckets, func(i int) string { return fmt.Sprintf("%02d月", i+1) })
	default:
		buckets := make([]int, 24)
		for _, m := range messages {
			buckets[m.CreatedAt.Hour()]++
		}
		sb.WriteString(now.Format("2006-01-02") + " 群活跃度\n")
		renderBuckets(&sb, buckets, func(i int) string { return fmt.Sprintf("%02d时", i) })
	}

	if len(messages) == 0 {
		sb.WriteString("这段时间没有任何消息")
	} else {
		sb.WriteString(fmt.Sprintf("共%d条消息", len(messages)))
	}
	return sb.String()
}

func renderBuckets(sb *strings.Builder, buckets []int, label func(i int) string) {
	max := 0
	for _, n := range buckets {
		if n > max {
			max = n
		}
	}
	if max == 0 {
		return
	}

	for i, n := range buckets {
		if n == 0 {
			continue
		}
		width := n * heatmapBarWidth / max
		if width == 0 {
			width = 1
		}
		sb.WriteString(fmt.Sprintf("%s %s %d\n", label(i), strings.Repeat("▇", width), n))
	}
}
