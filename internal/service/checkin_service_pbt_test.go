package service

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Streak transitions depend only on the calendar gap since the last check-in
func TestProperty_CheckInTransition(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	f := newFixture(t)

	properties.Property("gap decides continue, keep or reset", prop.ForAll(
		func(prior, gap int) bool {
			f.mr.FlushAll()
			f.seed(t, "0xp", prior, gap)

			result, err := f.checkIn.CheckIn(context.Background(), "0xp")
			if err != nil {
				return false
			}

			switch gap {
			case 0:
				return result.Streak == prior && result.AlreadyCheckedIn
			case 1:
				return result.Streak == prior+1 && !result.AlreadyCheckedIn
			default:
				return result.Streak == 1 && !result.AlreadyCheckedIn
			}
		},
		gen.IntRange(1, 500),
		gen.IntRange(0, 60),
	))

	properties.Property("at most one leaderboard entry per identity", prop.ForAll(
		func(days []int) bool {
			f.mr.FlushAll()
			for _, d := range days {
				f.clock.AdvanceDays(d)
				if _, err := f.checkIn.CheckIn(context.Background(), "0xQ"); err != nil {
					return false
				}
			}
			return len(f.leaderboardMembers(t)) == 1
		},
		gen.SliceOfN(10, gen.IntRange(0, 3)),
	))

	properties.TestingRun(t)
}
