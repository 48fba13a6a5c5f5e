package stats_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/courtstats/internal/domain/model"
	"github.com/okian/courtstats/internal/domain/stats"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAggregator_Summary(t *testing.T) {
	ctx := context.Background()

	Convey("Given a player with a shot, a pass and a turnover", t, func() {
		r := newFakeReader()
		r.addPlayer(1, "Alice", "Hawks",
			shot(1, model.Isolation, 3, false),
			pass(1, model.PickAndRoll, true),
			turnover(1, model.Isolation),
		)
		agg := stats.NewAggregator(r)

		Convey("When computing the summary", func() {
			s, err := agg.Summary(ctx, 1)
			So(err, ShouldBeNil)

			Convey("Then identity fields are resolved", func() {
				So(s.PlayerID, ShouldEqual, 1)
				So(s.PlayerName, ShouldEqual, "Alice")
				So(s.TeamName, ShouldEqual, "Hawks")
				So(s.Ranks, ShouldBeNil)
			})

			Convey("And totals cover every event", func() {
				So(s.Totals, ShouldResemble, stats.Totals{
					Points: 3, Shots: 1, Passes: 1, Turnovers: 1, PotentialAssists: 1, ShootingFouls: 0,
				})
			})

			Convey("And the breakdown splits by action type", func() {
				So(s.StatsByAction[model.Isolation], ShouldResemble, stats.Aggregates{Points: 3, Shots: 1, Turnovers: 1})
				So(s.StatsByAction[model.PickAndRoll], ShouldResemble, stats.Aggregates{Passes: 1, PotentialAssists: 1})
				So(s.StatsByAction[model.PostUp], ShouldResemble, stats.Aggregates{})
				So(s.StatsByAction[model.OffBallScreen], ShouldResemble, stats.Aggregates{})
			})

			Convey("And locations are listed per event type", func() {
				So(s.Shots, ShouldResemble, []stats.ShotLocation{{X: 3, Y: 1, ActionType: model.Isolation}})
				So(s.Passes, ShouldResemble, []stats.PassLocation{{StartX: 1, StartY: 2, EndX: 3, EndY: 4, ActionType: model.PickAndRoll}})
				So(s.Turnovers, ShouldResemble, []stats.TurnoverLocation{{X: -5, Y: 6, ActionType: model.Isolation}})
			})
		})

		Convey("When computing the summary twice", func() {
			first, err := agg.Summary(ctx, 1)
			So(err, ShouldBeNil)
			second, err := agg.Summary(ctx, 1)
			So(err, ShouldBeNil)

			Convey("Then both results are identical", func() {
				So(second, ShouldResemble, first)
			})
		})
	})

	Convey("Given a player without events", t, func() {
		r := newFakeReader()
		r.addPlayer(0, "Bench", "Hawks")
		agg := stats.NewAggregator(r)

		s, err := agg.Summary(ctx, 0)

		Convey("Then everything is zero and lists are empty, not nil", func() {
			So(err, ShouldBeNil)
			So(s.Totals, ShouldResemble, stats.Totals{})
			So(len(s.StatsByAction), ShouldEqual, len(model.KnownActionTypes))
			for _, a := range model.KnownActionTypes {
				So(s.StatsByAction[a], ShouldResemble, stats.Aggregates{})
			}
			So(s.Shots, ShouldNotBeNil)
			So(s.Shots, ShouldBeEmpty)
			So(s.Passes, ShouldNotBeNil)
			So(s.Passes, ShouldBeEmpty)
			So(s.Turnovers, ShouldNotBeNil)
			So(s.Turnovers, ShouldBeEmpty)
		})
	})

	Convey("Given an unknown player id", t, func() {
		agg := stats.NewAggregator(newFakeReader())

		_, err := agg.Summary(ctx, 42)

		Convey("Then a NotFoundError is returned", func() {
			So(errors.Is(err, stats.ErrNotFound), ShouldBeTrue)
			var nf *stats.NotFoundError
			So(errors.As(err, &nf), ShouldBeTrue)
			So(nf.PlayerID, ShouldEqual, 42)
		})
	})

	Convey("Given events spread over known action types only", t, func() {
		r := newFakeReader()
		r.addPlayer(5, "Cara", "Owls",
			shot(5, model.PickAndRoll, 2, true),
			shot(5, model.PostUp, 0, false),
			shot(5, model.OffBallScreen, 3, false),
			pass(5, model.Isolation, false),
			pass(5, model.PostUp, true),
			turnover(5, model.PickAndRoll),
		)
		s, err := stats.NewAggregator(r).Summary(ctx, 5)
		So(err, ShouldBeNil)

		Convey("Then the breakdown partitions the totals exactly", func() {
			var sum stats.Aggregates
			for _, a := range model.KnownActionTypes {
				sum.Merge(s.StatsByAction[a])
			}
			So(stats.Totals(sum), ShouldResemble, s.Totals)
		})

		Convey("And the three event counts add up to the number of events", func() {
			So(s.Totals.Shots+s.Totals.Passes+s.Totals.Turnovers, ShouldEqual, 6)
		})

		Convey("And the shooting foul is counted once", func() {
			So(s.Totals.ShootingFouls, ShouldEqual, 1)
			So(s.StatsByAction[model.PickAndRoll].ShootingFouls, ShouldEqual, 1)
		})
	})

	Convey("Given events with an untracked action type", t, func() {
		r := newFakeReader()
		r.addPlayer(6, "Dee", "Owls",
			shot(6, model.Isolation, 2, false),
			shot(6, model.ActionType("transition"), 3, false),
		)
		s, err := stats.NewAggregator(r).Summary(ctx, 6)
		So(err, ShouldBeNil)

		Convey("Then they count toward totals but not toward any bucket", func() {
			So(s.Totals.Shots, ShouldEqual, 2)
			So(s.Totals.Points, ShouldEqual, 5)
			_, present := s.StatsByAction["transition"]
			So(present, ShouldBeFalse)

			var bucketShots int64
			for _, a := range model.KnownActionTypes {
				bucketShots += s.StatsByAction[a].Shots
			}
			So(bucketShots, ShouldEqual, 1)
			So(bucketShots, ShouldBeLessThanOrEqualTo, s.Totals.Shots)
		})

		Convey("And their locations are still listed", func() {
			So(len(s.Shots), ShouldEqual, 2)
			So(s.Shots[1].ActionType, ShouldEqual, model.ActionType("transition"))
		})
	})

	Convey("Given an event that belongs to another player", t, func() {
		r := newFakeReader()
		r.addPlayer(7, "Eve", "Owls", shot(7, model.Isolation, 2, false), shot(8, model.Isolation, 3, false))
		var reported []*stats.DataIntegrityError
		agg := stats.NewAggregator(r, stats.WithAggregatorIntegrityHandler(func(err *stats.DataIntegrityError) {
			reported = append(reported, err)
		}))

		s, err := agg.Summary(ctx, 7)

		Convey("Then it is skipped and reported", func() {
			So(err, ShouldBeNil)
			So(s.Totals.Points, ShouldEqual, 2)
			So(len(s.Shots), ShouldEqual, 1)
			So(len(reported), ShouldEqual, 1)
			So(reported[0].PlayerID, ShouldEqual, 8)
			So(errors.Is(reported[0], stats.ErrDataIntegrity), ShouldBeTrue)
		})
	})
}

func TestAggregates_Add(t *testing.T) {
	Convey("Given empty aggregates", t, func() {
		var a stats.Aggregates

		Convey("When adding a missed shot with a foul", func() {
			a.Add(shot(1, model.PostUp, 0, true))

			Convey("Then the shot and the foul count but no points", func() {
				So(a, ShouldResemble, stats.Aggregates{Shots: 1, ShootingFouls: 1})
			})
		})

		Convey("When adding a pass that is not a potential assist", func() {
			a.Add(pass(1, model.PostUp, false))

			Convey("Then only the pass counts", func() {
				So(a, ShouldResemble, stats.Aggregates{Passes: 1})
			})
		})

		Convey("Then Value reads each statistic back", func() {
			a = stats.Aggregates{Points: 1, Shots: 2, Passes: 3, Turnovers: 4, PotentialAssists: 5, ShootingFouls: 6}
			for i, s := range stats.AllStats {
				So(a.Value(s), ShouldEqual, int64(i+1))
			}
			So(a.Value(stats.Stat("rebounds")), ShouldEqual, 0)
		})
	})
}
