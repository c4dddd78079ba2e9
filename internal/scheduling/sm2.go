package scheduling

import (
	"math"
	"time"

	"github.com/example/revise/pkg/models"
)

// SM2 is a modified SuperMemo-2 scheduler. All policy knobs are exposed as
// fields so deployments can tune interval growth without touching the
// algorithm; NewSM2 fills in the defaults.
type SM2 struct {
	// MinEaseFactor is the floor below which ease never drops.
	MinEaseFactor float64
	// LapseEasePenalty is subtracted from ease on an Again rating.
	LapseEasePenalty float64
	// HardEasePenalty is subtracted from ease on a Hard rating.
	HardEasePenalty float64
	// EasyEaseBonus is added to ease on an Easy rating.
	EasyEaseBonus float64
	// HardIntervalFactor scales the previous interval on a Hard rating.
	HardIntervalFactor float64
	// EasyIntervalBonus further scales the interval on an Easy rating.
	EasyIntervalBonus float64
	// FirstInterval is the interval in days after the first successful review.
	FirstInterval float64
	// SecondInterval is the interval in days after the second successful review.
	SecondInterval float64
	// EasyFirstInterval is the graduation interval for an Easy first review.
	EasyFirstInterval float64
	// LapseInterval is the relearning interval after an Again rating.
	LapseInterval float64
	// MaxInterval caps interval growth, in days.
	MaxInterval float64
}

// NewSM2 returns a scheduler with the default policy.
func NewSM2() *SM2 {
	return &SM2{
		MinEaseFactor:      1.3,
		LapseEasePenalty:   0.20,
		HardEasePenalty:    0.15,
		EasyEaseBonus:      0.15,
		HardIntervalFactor: 1.2,
		EasyIntervalBonus:  1.3,
		FirstInterval:      1,
		SecondInterval:     6,
		EasyFirstInterval:  4,
		LapseInterval:      1,
		MaxInterval:        365,
	}
}

// Schedule applies one graded review to a card's memory state and returns the
// updated state. It is pure: the input is not mutated, no clock is read, and
// it never fails for a valid rating (callers validate the rating first).
// Version is left untouched; the repository bumps it on save.
func (s *SM2) Schedule(state models.CardMemoryState, rating models.Rating, now time.Time) models.CardMemoryState {
	next := state

	if rating == models.RatingAgain {
		s.applyLapse(&next)
	} else {
		s.applySuccess(&next, rating)
	}

	next.TimesReviewed++
	reviewedAt := now
	next.LastReviewedAt = &reviewedAt
	next.NextReviewAt = now.Add(daysToDuration(next.IntervalDays))
	return next
}

// applyLapse handles an Again rating: the card returns to short-interval
// relearning and its ease takes a penalty. A card that had reached the
// review cycle moves to Relearning; one still learning stays in Learning.
func (s *SM2) applyLapse(c *models.CardMemoryState) {
	if c.State == models.StateReviewing || c.State == models.StateRelearning {
		c.State = models.StateRelearning
	} else {
		c.State = models.StateLearning
	}
	c.Repetitions = 0
	c.IntervalDays = s.LapseInterval
	c.EaseFactor = s.flooredEase(c.EaseFactor - s.LapseEasePenalty)
}

// applySuccess handles Hard, Good and Easy. The interval is computed from
// the pre-adjustment ease, then the ease delta is applied.
func (s *SM2) applySuccess(c *models.CardMemoryState, rating models.Rating) {
	switch {
	case c.Repetitions == 0:
		// First successful review since New or the last lapse. There is no
		// prior interval to scale, so Hard gets the same floor as Good.
		if rating == models.RatingEasy {
			c.IntervalDays = s.EasyFirstInterval
			c.State = models.StateReviewing
		} else {
			c.IntervalDays = s.FirstInterval
			c.State = models.StateLearning
		}
	case c.Repetitions == 1:
		switch rating {
		case models.RatingHard:
			c.IntervalDays = s.scaledInterval(c.IntervalDays, s.HardIntervalFactor)
		case models.RatingGood:
			c.IntervalDays = s.SecondInterval
		case models.RatingEasy:
			c.IntervalDays = s.scaledInterval(s.SecondInterval, c.EaseFactor*s.EasyIntervalBonus)
		}
		c.State = models.StateReviewing
	default: // Repetitions >= 2
		switch rating {
		case models.RatingHard:
			c.IntervalDays = s.scaledInterval(c.IntervalDays, s.HardIntervalFactor)
		case models.RatingGood:
			c.IntervalDays = s.scaledInterval(c.IntervalDays, c.EaseFactor)
		case models.RatingEasy:
			c.IntervalDays = s.scaledInterval(c.IntervalDays, c.EaseFactor*s.EasyIntervalBonus)
		}
		c.State = models.StateReviewing
	}

	switch rating {
	case models.RatingHard:
		c.EaseFactor = s.flooredEase(c.EaseFactor - s.HardEasePenalty)
	case models.RatingEasy:
		c.EaseFactor += s.EasyEaseBonus
	}
	c.Repetitions++
}

// scaledInterval multiplies and rounds to whole days, clamped to [1, MaxInterval].
func (s *SM2) scaledInterval(interval, factor float64) float64 {
	days := math.Round(interval * factor)
	if days < 1 {
		days = 1
	}
	if days > s.MaxInterval {
		days = s.MaxInterval
	}
	return days
}

func (s *SM2) flooredEase(ease float64) float64 {
	if ease < s.MinEaseFactor {
		return s.MinEaseFactor
	}
	return ease
}

func daysToDuration(days float64) time.Duration {
	return time.Duration(days * 24 * float64(time.Hour))
}
