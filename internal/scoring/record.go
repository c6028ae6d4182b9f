package scoring

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
)

var ErrInvalidRecord = errors.New("invalid record")

var validate = validator.New()

// Record is one finished game. Score is the mistake count and Time the
// elapsed seconds; lower is better for both.
type Record struct {
	Name      string `json:"name" validate:"required,max=40"`
	LevelID   string `json:"levelId" validate:"required"`
	Score     int    `json:"score" validate:"gte=0"`
	Time      int    `json:"time" validate:"gte=0"`
	Timestamp int64  `json:"timestamp" validate:"gt=0"` // unix milliseconds
}

// Validate checks the record before it is stored or sent anywhere.
func (r Record) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return nil
}

// SortRecords returns a copy ordered by fewest mistakes, then shortest time.
func SortRecords(records []Record) []Record {
	sorted := make([]Record, len(records))
	copy(sorted, records)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score < sorted[j].Score
		}
		return sorted[i].Time < sorted[j].Time
	})
	return sorted
}

// ForLevel keeps the records of one level. An empty id keeps everything.
func ForLevel(records []Record, levelID string) []Record {
	if levelID == "" {
		return records
	}
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.LevelID == levelID {
			out = append(out, r)
		}
	}
	return out
}

// Top returns at most n records. n <= 0 means all of them.
func Top(records []Record, n int) []Record {
	if n <= 0 || len(records) < n {
		return records
	}
	return records[:n]
}
