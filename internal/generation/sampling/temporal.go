package sampling

import (
	"math"
	"math/rand"
	"time"

	"datareplicator/internal/generation/models"
	dErrors "datareplicator/pkg/domain-errors"
)

// DateLayout is the canonical output format for generated dates.
const DateLayout = "2006-01-02"

// Dates samples count calendar dates within [start,end] as ISO strings.
// Uniform draws a day offset uniformly; normal centers on the midpoint with
// sigma = range/6 and clips the offset to the valid range before converting.
func Dates(rng *rand.Rand, start, end time.Time, dist models.Distribution, count int) ([]string, error) {
	days := int(end.Sub(start).Hours() / 24)
	if days < 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "date sample: end date is before start date")
	}

	out := make([]string, count)
	for i := range out {
		var offset int
		switch dist {
		case models.DistNormal:
			mean := float64(days) / 2
			std := float64(days) / 6
			offset = int(math.Round(rng.NormFloat64()*std + mean))
			if offset < 0 {
				offset = 0
			}
			if offset > days {
				offset = days
			}
		default:
			offset = rng.Intn(days + 1)
		}
		out[i] = start.AddDate(0, 0, offset).Format(DateLayout)
	}
	return out, nil
}

// RepairDate deterministically fixes an independently sampled year/month/day
// combination: the day is clamped to the last valid day of that month (leap
// aware for February), falling back to day 15 if the combination still fails.
func RepairDate(year, month, day int) time.Time {
	if month < 1 {
		month = 1
	}
	if month > 12 {
		month = 12
	}
	if day < 1 {
		day = 1
	}
	if last := daysInMonth(year, month); day > last {
		day = last
	}

	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || int(d.Month()) != month || d.Day() != day {
		return time.Date(year, time.Month(month), 15, 0, 0, 0, 0, time.UTC)
	}
	return d
}

func daysInMonth(year, month int) int {
	switch month {
	case 2:
		if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	default:
		return 31
	}
}
