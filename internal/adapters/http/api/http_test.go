package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/athlos-ai/athlos/internal/adapters/http/api"
	"github.com/athlos-ai/athlos/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// mockService implements api.Dependencies for handler tests.
type mockService struct {
	seen     map[string]bool
	ingested []model.DataType
	ingErr   error

	athletes map[string]*model.Athlete
	plans    map[string]*model.WeeklyPlan
	planErr  error
}

func newMockService() *mockService {
	return &mockService{
		seen:     map[string]bool{},
		athletes: map[string]*model.Athlete{},
		plans:    map[string]*model.WeeklyPlan{},
	}
}

func (m *mockService) SeenAndRecord(ctx context.Context, id string) bool {
	if m.seen[id] {
		return true
	}
	m.seen[id] = true
	return false
}

func (m *mockService) Unrecord(ctx context.Context, id string) { delete(m.seen, id) }

func (m *mockService) IngestData(ctx context.Context, source string, dataType model.DataType, payload json.RawMessage) error {
	if m.ingErr != nil {
		return m.ingErr
	}
	m.ingested = append(m.ingested, dataType)
	return nil
}

func (m *mockService) GetAthlete(id string) (*model.Athlete, bool) {
	a, ok := m.athletes[id]
	return a, ok
}

func (m *mockService) GetAllAthletes() []*model.Athlete {
	out := make([]*model.Athlete, 0, len(m.athletes))
	for _, a := range m.athletes {
		out = append(out, a)
	}
	return out
}

func (m *mockService) GetWeeklyPlan(athleteID string) (*model.WeeklyPlan, bool) {
	p, ok := m.plans[athleteID]
	return p, ok
}

func (m *mockService) RegeneratePlan(ctx context.Context, athleteID string, phase model.Phase) (*model.WeeklyPlan, error) {
	if m.planErr != nil {
		return nil, m.planErr
	}
	p := &model.WeeklyPlan{AthleteID: athleteID, Phase: phase, Source: "ai"}
	m.plans[athleteID] = p
	return p, nil
}

func (m *mockService) GetStats() map[string]any {
	return map[string]any{"cached_athletes": len(m.athletes)}
}

func newTestMux(m *mockService) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(m, m).Register(context.Background(), mux)
	return mux
}

func TestIngestEndpoint(t *testing.T) {
	Convey("Given the API with a healthy service", t, func() {
		m := newMockService()
		mux := newTestMux(m)

		post := func(body string) *httptest.ResponseRecorder {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/ingest", strings.NewReader(body))
			mux.ServeHTTP(rec, req)
			return rec
		}

		valid := `{"event_id":"e1","type":"RECOVERY_METRICS","payload":{"athleteId":"a1","load":30,"pain":0}}`

		Convey("When a valid event is posted", func() {
			rec := post(valid)

			Convey("Then it is processed", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"status":"processed"`)
				So(m.ingested, ShouldResemble, []model.DataType{model.TypeRecoveryMetrics})
			})
		})

		Convey("When the same event id is posted twice", func() {
			post(valid)
			rec := post(valid)

			Convey("Then the second is acknowledged as a duplicate", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"duplicate":true`)
				So(len(m.ingested), ShouldEqual, 1)
			})
		})

		Convey("When required fields are missing", func() {
			rec := post(`{"type":"RECOVERY_METRICS"}`)

			Convey("Then the request is rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the body is not JSON", func() {
			rec := post(`not json at all`)

			Convey("Then the request is rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When using the wrong method", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ingest", nil))

			Convey("Then it is not found", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})

	Convey("Given a service whose ingestion fails", t, func() {
		m := newMockService()
		m.ingErr = errors.New("store write failed")
		mux := newTestMux(m)

		Convey("When an event is posted", func() {
			rec := httptest.NewRecorder()
			body := `{"event_id":"e2","type":"RECOVERY_METRICS","payload":{"athleteId":"a1"}}`
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ingest", strings.NewReader(body)))

			Convey("Then the failure surfaces and the id is released for retry", func() {
				So(rec.Code, ShouldEqual, http.StatusInternalServerError)
				So(m.seen["e2"], ShouldBeFalse)
			})
		})
	})
}

func TestAthleteEndpoints(t *testing.T) {
	Convey("Given the API with one athlete and a plan", t, func() {
		m := newMockService()
		m.athletes["a1"] = &model.Athlete{ID: "a1", Name: "Jo", Status: model.StatusCaution}
		m.plans["a1"] = &model.WeeklyPlan{AthleteID: "a1", Phase: model.PhaseCompetitive, Source: "fallback"}
		mux := newTestMux(m)

		get := func(path string) *httptest.ResponseRecorder {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			return rec
		}

		Convey("When listing athletes", func() {
			rec := get("/athletes")

			Convey("Then the roster comes back", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var list []model.Athlete
				So(json.Unmarshal(rec.Body.Bytes(), &list), ShouldBeNil)
				So(len(list), ShouldEqual, 1)
			})
		})

		Convey("When fetching one athlete", func() {
			rec := get("/athletes/a1")

			Convey("Then the record comes back", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"Jo"`)
			})
		})

		Convey("When fetching an unknown athlete", func() {
			rec := get("/athletes/ghost")

			Convey("Then it is a 404", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When fetching the plan", func() {
			rec := get("/athletes/a1/plan")

			Convey("Then the plan comes back", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"fallback"`)
			})
		})

		Convey("When regenerating the plan with a phase", func() {
			rec := httptest.NewRecorder()
			body := `{"phase":"TAPERING"}`
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/athletes/a1/plan/regenerate", strings.NewReader(body)))

			Convey("Then a fresh plan comes back", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, string(model.PhaseTapering))
			})
		})

		Convey("When regenerating with an invalid phase", func() {
			rec := httptest.NewRecorder()
			body := `{"phase":"OFF_SEASON"}`
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/athletes/a1/plan/regenerate", strings.NewReader(body)))

			Convey("Then the request is rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the planner is down", func() {
			m.planErr = errors.New("provider unavailable")
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/athletes/a1/plan/regenerate", strings.NewReader(`{}`)))

			Convey("Then the API reports the plan unavailable", func() {
				So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
			})
		})
	})
}

func TestHealthAndStats(t *testing.T) {
	Convey("Given the API", t, func() {
		m := newMockService()
		m.athletes["a1"] = &model.Athlete{ID: "a1", Name: "Jo", Status: model.StatusOptimal}
		mux := newTestMux(m)

		Convey("When the health endpoint is hit", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			Convey("Then it reports ok", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"ok"`)
			})
		})

		Convey("When metrics are requested via Accept", func() {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			req.Header.Set("Accept", "text/plain")
			mux.ServeHTTP(rec, req)

			Convey("Then the Prometheus exposition is served", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When stats are requested", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

			Convey("Then service statistics come back", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"cached_athletes":1`)
			})
		})
	})
}
