package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/courtstats/internal/adapters/http/api"
	"github.com/okian/courtstats/internal/domain/model"
	"github.com/okian/courtstats/internal/domain/stats"
	"github.com/okian/courtstats/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// Mock implementations for testing
type mockDependencies struct {
	summary    *stats.Summary
	summaryErr error
	players    []model.Player
	playersErr error
	gotLimit   int
	gotID      int64
}

func (m *mockDependencies) PlayerSummary(_ context.Context, playerID int64) (*stats.Summary, error) {
	m.gotID = playerID
	if m.summaryErr != nil {
		return nil, m.summaryErr
	}
	return m.summary, nil
}

func (m *mockDependencies) Players(_ context.Context, limit int) ([]model.Player, error) {
	m.gotLimit = limit
	if m.playersErr != nil {
		return nil, m.playersErr
	}
	if limit < len(m.players) {
		return m.players[:limit], nil
	}
	return m.players, nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newMux(deps *mockDependencies) *http.ServeMux {
	server := api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"started": true}}, 2)
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

func serve(mux *http.ServeMux, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, http.NoBody)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
	return body
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("When registering routes", func() {
			Convey("Then health endpoint should report ok", func() {
				w := serve(mux, "GET", "/healthz")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"status":"ok"`)
				So(w.Header().Get(api.RequestIDHeader), ShouldNotBeEmpty)
			})

			Convey("And metrics endpoint should expose Prometheus text", func() {
				serve(mux, "GET", "/healthz")
				w := serve(mux, "GET", "/metrics")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "courtstats_api_http_requests_total")
			})

			Convey("And stats endpoint should return provider stats", func() {
				w := serve(mux, "GET", "/stats")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"started":true`)
			})

			Convey("And dashboard endpoint should serve HTML", func() {
				w := serve(mux, "GET", "/dashboard")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
				So(w.Body.String(), ShouldContainSubstring, "/api/v1/playerSummary/")
			})

			Convey("And other methods are rejected", func() {
				w := serve(mux, "POST", "/api/v1/players")
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})
}

func TestMetricsMiddleware_RequestID(t *testing.T) {
	Convey("Given a handler wrapped in MetricsMiddleware", t, func() {
		h := api.MetricsMiddleware(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}, "test")

		Convey("When the client sends a valid request id", func() {
			id := uuid.NewString()
			req := httptest.NewRequest("GET", "/", http.NoBody)
			req.Header.Set(api.RequestIDHeader, id)
			w := httptest.NewRecorder()
			h(w, req)

			Convey("Then it is echoed back", func() {
				So(w.Header().Get(api.RequestIDHeader), ShouldEqual, id)
				So(w.Code, ShouldEqual, http.StatusTeapot)
			})
		})

		Convey("When the client sends garbage", func() {
			req := httptest.NewRequest("GET", "/", http.NoBody)
			req.Header.Set(api.RequestIDHeader, "not-an-id")
			w := httptest.NewRecorder()
			h(w, req)

			Convey("Then a fresh uuid is generated", func() {
				_, err := uuid.Parse(w.Header().Get(api.RequestIDHeader))
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestSummaryHandler(t *testing.T) {
	Convey("Given a summary endpoint", t, func() {
		deps := &mockDependencies{
			summary: &stats.Summary{
				PlayerID:   7,
				PlayerName: "Alice",
				TeamName:   "Hawks",
				Shots:      []stats.ShotLocation{},
				Passes:     []stats.PassLocation{},
				Turnovers:  []stats.TurnoverLocation{},
				Totals:     stats.Totals{Points: 12},
				Ranks:      &stats.Ranks{Points: 1},
			},
		}
		mux := newMux(deps)

		Convey("When requesting a known player", func() {
			w := serve(mux, "GET", "/api/v1/playerSummary/7")

			Convey("Then the summary is returned as JSON", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.gotID, ShouldEqual, 7)
				var body map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body["player_name"], ShouldEqual, "Alice")
				So(body["totals"].(map[string]any)["total_points"], ShouldEqual, float64(12))
				So(body["ranks"].(map[string]any)["points"], ShouldEqual, float64(1))
			})
		})

		Convey("When the id is not an integer", func() {
			w := serve(mux, "GET", "/api/v1/playerSummary/abc")

			Convey("Then it should return bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["code"], ShouldEqual, "bad_request")
			})
		})

		Convey("When the player is unknown", func() {
			deps.summaryErr = fmt.Errorf("summary: %w", &stats.NotFoundError{PlayerID: 404})
			w := serve(mux, "GET", "/api/v1/playerSummary/404")

			Convey("Then it should return not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				body := decodeError(w)
				So(body["code"], ShouldEqual, "not_found")
				So(body["message"], ShouldContainSubstring, "player 404 not found")
			})
		})

		Convey("When the store fails", func() {
			deps.summaryErr = errors.New("sqlite: connection reset on events table")
			w := serve(mux, "GET", "/api/v1/playerSummary/7")

			Convey("Then it should return internal error without storage details", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				body := decodeError(w)
				So(body["code"], ShouldEqual, "internal_error")
				So(body["message"], ShouldEqual, http.StatusText(http.StatusInternalServerError))
				So(w.Body.String(), ShouldNotContainSubstring, "sqlite")
			})
		})
	})
}

func TestPlayersHandler(t *testing.T) {
	Convey("Given a players endpoint capped at two", t, func() {
		deps := &mockDependencies{players: []model.Player{
			{ID: 1, Name: "Alice", TeamID: 1, TeamName: "Hawks"},
			{ID: 2, Name: "Bo", TeamID: 2, TeamName: "Owls"},
			{ID: 3, Name: "Cy", TeamID: 1, TeamName: "Hawks"},
		}}
		mux := newMux(deps)

		Convey("When no limit is given", func() {
			w := serve(mux, "GET", "/api/v1/players")

			Convey("Then the cap is applied", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.gotLimit, ShouldEqual, 2)
				var body []map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(len(body), ShouldEqual, 2)
				So(body[1]["team_name"], ShouldEqual, "Owls")
			})
		})

		Convey("When a valid limit is given", func() {
			w := serve(mux, "GET", "/api/v1/players?limit=1")

			Convey("Then it is passed through", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.gotLimit, ShouldEqual, 1)
			})
		})

		Convey("When the limit is invalid", func() {
			for _, q := range []string{"0", "-3", "x"} {
				w := serve(mux, "GET", "/api/v1/players?limit="+q)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["code"], ShouldEqual, "bad_request")
			}
		})

		Convey("When the limit exceeds the cap", func() {
			w := serve(mux, "GET", "/api/v1/players?limit=3")

			Convey("Then it should be rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["code"], ShouldEqual, "limit_exceeded")
			})
		})

		Convey("When the store fails", func() {
			deps.playersErr = errors.New("pgx: relation players does not exist")
			w := serve(mux, "GET", "/api/v1/players")

			Convey("Then it should return internal error without storage details", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(decodeError(w)["message"], ShouldEqual, http.StatusText(http.StatusInternalServerError))
				So(w.Body.String(), ShouldNotContainSubstring, "pgx")
			})
		})
	})
}

func TestKindErrors(t *testing.T) {
	Convey("Given API kind errors", t, func() {
		cause := errors.New("strconv failure")

		Convey("When wrapping with a kind", func() {
			err := api.WrapKind("api.op", api.ErrBadRequest, cause)

			Convey("Then both kind and cause match", func() {
				So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
				So(errors.Is(err, cause), ShouldBeTrue)
				So(err.Error(), ShouldEqual, "api.op: bad request: strconv failure")
			})
		})

		Convey("When creating a bare kind", func() {
			err := api.NewKind("api.op", api.ErrNotFound)
			So(errors.Is(err, api.ErrNotFound), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: not found")
		})

		Convey("When wrapping nil", func() {
			So(api.Wrap("api.op", nil), ShouldBeNil)
		})
	})
}
