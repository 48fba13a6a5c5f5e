package repository

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/courtstats/internal/domain/model"
	"github.com/okian/courtstats/internal/domain/stats"
)

// batchTotals aggregates through the event read path for comparison.
func batchTotals(ctx context.Context, r stats.Reader) map[int64]stats.Aggregates {
	players, err := r.Players(ctx)
	So(err, ShouldBeNil)
	ids := make([]int64, 0, len(players))
	for _, p := range players {
		ids = append(ids, p.ID)
	}
	byPlayer, err := r.EventsForPlayers(ctx, ids)
	So(err, ShouldBeNil)
	out := make(map[int64]stats.Aggregates, len(ids))
	for _, id := range ids {
		var a stats.Aggregates
		for _, e := range byPlayer[id] {
			a.Add(e)
		}
		out[id] = a
	}
	return out
}

func TestSQLStore_PlayerTotals(t *testing.T) {
	ctx := context.Background()

	Convey("Given a seeded sqlite store", t, func() {
		s := newSQLite(t).(*SQLStore)
		seed(ctx, s)

		totals, err := s.PlayerTotals(ctx)

		Convey("Then the grouped query matches event-by-event aggregation", func() {
			So(err, ShouldBeNil)
			So(totals, ShouldResemble, batchTotals(ctx, s))
		})

		Convey("And players without events get a zero row", func() {
			a, ok := totals[9]
			So(ok, ShouldBeTrue)
			So(a, ShouldResemble, stats.Aggregates{})
		})
	})
}

func TestSQLStore_UndecodableEvents(t *testing.T) {
	ctx := context.Background()

	Convey("Given a stored event with an unknown type", t, func() {
		var reported []*stats.DataIntegrityError
		s := newSQLite(t, WithIntegrityHandler(func(err *stats.DataIntegrityError) {
			reported = append(reported, err)
		})).(*SQLStore)
		seed(ctx, s)
		So(s.db.Create(&eventRow{ID: 900, PlayerID: 5, Seq: 99, GameID: 10, EventType: "dunk", ActionType: "isolation"}).Error, ShouldBeNil)

		Convey("When reading the player's events", func() {
			evs, err := s.EventsForPlayer(ctx, 5)

			Convey("Then the row is skipped and reported", func() {
				So(err, ShouldBeNil)
				So(len(evs), ShouldEqual, 2)
				So(len(reported), ShouldEqual, 1)
				So(reported[0].EventID, ShouldEqual, 900)
			})
		})

		Convey("When aggregating in SQL", func() {
			totals, err := s.PlayerTotals(ctx)

			Convey("Then the row is ignored there as well", func() {
				So(err, ShouldBeNil)
				So(totals[5], ShouldResemble, stats.Aggregates{Points: 2, Shots: 1, Passes: 1})
			})
		})
	})
}

// readerOnly hides PlayerTotals so the Ranker takes the batched event path.
type readerOnly struct{ stats.Reader }

func TestSQLStore_MisplacedFlags(t *testing.T) {
	ctx := context.Background()

	Convey("Given stored rows carrying flags of another event type", t, func() {
		s := newSQLite(t).(*SQLStore)
		seed(ctx, s)
		rows := []eventRow{
			{ID: 901, PlayerID: 9, Seq: 0, GameID: 10, EventType: "turnover", ActionType: "isolation",
				IsShootingFoul: ptr(true), Points: ptr(2), TurnoverLocX: ptr(1.0), TurnoverLocY: ptr(1.0)},
			{ID: 902, PlayerID: 9, Seq: 1, GameID: 10, EventType: "pass", ActionType: "postUp",
				Points: ptr(3), IsShootingFoul: ptr(true), IsPassCompleted: ptr(true)},
			{ID: 903, PlayerID: 9, Seq: 2, GameID: 10, EventType: "shot", ActionType: "pickAndRoll",
				Points: ptr(0), IsPotentialAssist: ptr(true)},
		}
		So(s.db.Create(&rows).Error, ShouldBeNil)
		want := stats.Aggregates{Shots: 1, Passes: 1, Turnovers: 1}

		Convey("When aggregating in SQL", func() {
			totals, err := s.PlayerTotals(ctx)

			Convey("Then only flags of the row's own type count", func() {
				So(err, ShouldBeNil)
				So(totals[9], ShouldResemble, want)
			})
		})

		Convey("When summarizing the player from decoded events", func() {
			summary, err := stats.NewAggregator(s).Summary(ctx, 9)

			Convey("Then the totals agree with the grouped query", func() {
				So(err, ShouldBeNil)
				So(summary.Totals, ShouldResemble, stats.Totals{Shots: 1, Passes: 1, Turnovers: 1})
			})
		})

		Convey("When ranking through batched event reads", func() {
			pushDown, err := stats.NewRanker(s).Table(ctx)
			So(err, ShouldBeNil)
			batched, err := stats.NewRanker(readerOnly{s}, stats.WithBatchSize(2)).Table(ctx)

			Convey("Then both paths produce the same totals and ranks", func() {
				So(err, ShouldBeNil)
				So(batched.Totals[9], ShouldResemble, want)
				So(batched.Totals, ShouldResemble, pushDown.Totals)
				So(batched.Ranks, ShouldResemble, pushDown.Ranks)
			})
		})
	})
}

func TestSQLStore_ExplicitIDs(t *testing.T) {
	ctx := context.Background()

	Convey("Given events with explicit ids loaded twice", t, func() {
		s := newSQLite(t)
		seed(ctx, s)
		again := []model.Event{shotEvent(500, 5, model.PostUp, 2, false), passEvent(501, 5, model.OffBallScreen, false)}
		So(s.ReplacePlayer(ctx, model.Player{ID: 5, Name: "Bo", TeamID: 2}, again), ShouldBeNil)

		Convey("Then a later event without an id gets a fresh one", func() {
			So(s.ReplacePlayer(ctx, model.Player{ID: 9, Name: "Cy", TeamID: 1}, []model.Event{
				turnoverEvent(0, 9, model.Isolation),
			}), ShouldBeNil)
			evs, err := s.EventsForPlayer(ctx, 9)
			So(err, ShouldBeNil)
			So(len(evs), ShouldEqual, 1)
			So(evs[0].Meta().ID, ShouldBeGreaterThan, 501)

			c, err := s.Counts(ctx)
			So(err, ShouldBeNil)
			So(c.Events, ShouldEqual, 7)
		})
	})
}
