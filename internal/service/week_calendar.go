package service

import "time"

// 可生成工资周的年份范围
const (
	MinPayrollYear = 2000
	MaxPayrollYear = 2100
)

// WeekRange 一个周一至周日的工资周区间
type WeekRange struct {
	WeekNumber int
	Start      time.Time
	End        time.Time
}

// GenerateWeekRanges 计算某年的工资周区间（周一开始，连续不重叠）
//
// 首周：取包含 1 月 1 日那一周的周一；若该周一落在上一年且 1 月 1 日不是周日，顺延一周。
// 末周：取包含 12 月 31 日那一周的周日；若该周日落在下一年且 12 月 31 日不是周一，提前一周。
// 因此 1 月 1 日为周日时首周从上一年 12 月的周一开始，12 月 31 日为周一时末周延伸到下一年 1 月。
func GenerateWeekRanges(year int) []WeekRange {
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	first := mondayOf(jan1)
	if first.Year() == year-1 && jan1.Weekday() != time.Sunday {
		first = first.AddDate(0, 0, 7)
	}

	dec31 := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	last := mondayOf(dec31).AddDate(0, 0, 6)
	if last.Year() == year+1 && dec31.Weekday() != time.Monday {
		last = last.AddDate(0, 0, -7)
	}

	weeks := make([]WeekRange, 0, 53)
	for start, n := first, 1; !start.After(last); start, n = start.AddDate(0, 0, 7), n+1 {
		weeks = append(weeks, WeekRange{
			WeekNumber: n,
			Start:      start,
			End:        start.AddDate(0, 0, 6),
		})
	}
	return weeks
}

// mondayOf 返回 t 所在周（周一至周日）的周一
func mondayOf(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}
