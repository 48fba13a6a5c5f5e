package ranking_test

import (
	"math/rand"
	"testing"

	"github.com/okian/courtstats/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAssign(t *testing.T) {
	Convey("Given three players with values 10, 10 and 5", t, func() {
		entries := []ranking.Entry{
			{ID: 3, Value: 5},
			{ID: 1, Value: 10},
			{ID: 2, Value: 10},
		}

		Convey("When assigning ranks", func() {
			ranking.Assign(entries)

			Convey("Then tied players share rank 1 and the next one is 3", func() {
				So(entries, ShouldResemble, []ranking.Entry{
					{ID: 1, Value: 10, Rank: 1},
					{ID: 2, Value: 10, Rank: 1},
					{ID: 3, Value: 5, Rank: 3},
				})
			})
		})
	})

	Convey("Given an empty slice", t, func() {
		var entries []ranking.Entry

		Convey("Then assigning is a no-op", func() {
			So(func() { ranking.Assign(entries) }, ShouldNotPanic)
		})
	})

	Convey("Given all players tied at zero", t, func() {
		entries := []ranking.Entry{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}
		ranking.Assign(entries)

		Convey("Then every player ranks first", func() {
			for _, e := range entries {
				So(e.Rank, ShouldEqual, 1)
			}
		})
	})

	Convey("Given a tie group in the middle of the table", t, func() {
		entries := []ranking.Entry{
			{ID: 1, Value: 20},
			{ID: 2, Value: 7},
			{ID: 3, Value: 7},
			{ID: 4, Value: 7},
			{ID: 5, Value: 1},
		}
		ranking.Assign(entries)

		Convey("Then the group skips the ranks it occupies", func() {
			ranks := map[int64]int{}
			for _, e := range entries {
				ranks[e.ID] = e.Rank
			}
			So(ranks, ShouldResemble, map[int64]int{1: 1, 2: 2, 3: 2, 4: 2, 5: 5})
		})
	})
}

func TestCompute(t *testing.T) {
	Convey("Given a random population", t, func() {
		rng := rand.New(rand.NewSource(42))
		values := make(map[int64]int64)
		for id := int64(0); id < 200; id++ {
			values[id] = int64(rng.Intn(15))
		}

		Convey("When computing ranks", func() {
			ranks := ranking.Compute(values)

			Convey("Then each rank is one plus the number of strictly greater values", func() {
				So(len(ranks), ShouldEqual, len(values))
				for id, v := range values {
					greater := 0
					for _, other := range values {
						if other > v {
							greater++
						}
					}
					So(ranks[id], ShouldEqual, greater+1)
				}
			})
		})
	})

	Convey("Given no values", t, func() {
		So(ranking.Compute(nil), ShouldBeEmpty)
	})
}
