package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/runtogether/pacer/internal/adapters/artifact"
	"github.com/runtogether/pacer/internal/adapters/http/api"
	service "github.com/runtogether/pacer/internal/app"
	"github.com/runtogether/pacer/internal/domain/model"
	"github.com/runtogether/pacer/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// stubService fakes the app service behind the handlers.
type stubService struct {
	lastSessionID string
	lastLevel     int
	lastSamples   []model.RawSample

	result types.TickResult
	err    error
	health types.Health
	stats  map[string]interface{}
}

func (s *stubService) Tick(ctx context.Context, sessionID string, runnerLevel int, samples []model.RawSample) (types.TickResult, error) {
	s.lastSessionID = sessionID
	s.lastLevel = runnerLevel
	s.lastSamples = samples
	return s.result, s.err
}

func (s *stubService) Health(ctx context.Context) types.Health {
	return s.health
}

func (s *stubService) GetStats() map[string]interface{} {
	return s.stats
}

func newTestServer(stub *stubService) *httptest.Server {
	mux := http.NewServeMux()
	api.NewServer(stub, stub).Register(context.Background(), mux)
	return httptest.NewServer(mux)
}

func postTick(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url+"/tick", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post /tick: %v", err)
	}
	defer resp.Body.Close()
	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, decoded
}

func TestHandleTick(t *testing.T) {
	Convey("Given a server over a stub service", t, func() {
		hr := 130.5
		speed := 3.14
		stub := &stubService{
			result: types.TickResult{
				SessionID: "run-1",
				Display:   true,
				Result: types.Recommendation{
					PredHR:         &hr,
					PredSpeed:      &speed,
					Recommendation: "Maintain current pace",
				},
			},
		}
		ts := newTestServer(stub)
		defer ts.Close()

		Convey("When posting a valid tick", func() {
			resp, body := postTick(t, ts.URL, `{
				"session_id": "run-1",
				"runner_level": 3,
				"samples": [{"timestamp": 10, "heart_rate": 130, "speed_kmh": 11.3}]
			}`)

			Convey("Then the response mirrors the engine result", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(body["session_id"], ShouldEqual, "run-1")
				So(body["display_recommendation"], ShouldEqual, true)
				So(body["server_time"], ShouldBeGreaterThan, 0)

				result := body["result"].(map[string]any)
				So(result["pred_hr"], ShouldEqual, 130.5)
				So(result["pred_speed"], ShouldEqual, 3.14)
				So(result["recommendation"], ShouldEqual, "Maintain current pace")
			})

			Convey("And the request reached the service intact", func() {
				So(stub.lastSessionID, ShouldEqual, "run-1")
				So(stub.lastLevel, ShouldEqual, 3)
				So(len(stub.lastSamples), ShouldEqual, 1)
				So(*stub.lastSamples[0].SpeedKMH, ShouldEqual, 11.3)
			})
		})

		Convey("When runner_level is omitted", func() {
			resp, _ := postTick(t, ts.URL, `{
				"session_id": "run-1",
				"samples": [{"heart_rate": 130}]
			}`)

			Convey("Then it defaults to intermediate", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(stub.lastLevel, ShouldEqual, 2)
			})
		})

		Convey("When the body is not JSON", func() {
			resp, body := postTick(t, ts.URL, `{nope`)

			Convey("Then it is rejected", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
				So(body["code"], ShouldEqual, "bad_request")
			})
		})

		Convey("When session_id is missing", func() {
			resp, _ := postTick(t, ts.URL, `{"samples": [{"heart_rate": 130}]}`)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the sample list is empty", func() {
			resp, _ := postTick(t, ts.URL, `{"session_id": "run-1", "samples": []}`)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When using the wrong method", func() {
			resp, err := http.Get(ts.URL + "/tick")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestHandleTickErrors(t *testing.T) {
	Convey("Given a stub service that fails", t, func() {
		body := `{"session_id": "run-1", "samples": [{"heart_rate": 130}]}`

		Convey("When the service rejects the request", func() {
			stub := &stubService{err: fmt.Errorf("%w: runner level out of range", service.ErrValidation)}
			ts := newTestServer(stub)
			defer ts.Close()

			resp, decoded := postTick(t, ts.URL, body)

			Convey("Then it maps to a 400", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
				So(decoded["code"], ShouldEqual, "bad_request")
			})
		})

		Convey("When artifacts are unavailable", func() {
			stub := &stubService{err: fmt.Errorf("heart rate prediction: %w", artifact.ErrUnavailable)}
			ts := newTestServer(stub)
			defer ts.Close()

			resp, decoded := postTick(t, ts.URL, body)

			Convey("Then it maps to a 500 with a dedicated code", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusInternalServerError)
				So(decoded["code"], ShouldEqual, "artifacts_unavailable")
			})
		})

		Convey("When the transform fails", func() {
			stub := &stubService{err: fmt.Errorf("speed prediction: %w", artifact.ErrTransform)}
			ts := newTestServer(stub)
			defer ts.Close()

			resp, decoded := postTick(t, ts.URL, body)

			Convey("Then it maps to a 500 transform code", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusInternalServerError)
				So(decoded["code"], ShouldEqual, "transform_failed")
			})
		})
	})
}

func TestHandleHealth(t *testing.T) {
	Convey("Given a server with a degraded artifact set", t, func() {
		stub := &stubService{
			health: types.Health{
				Status:      "degraded",
				HRModel:     true,
				SpeedModel:  false,
				ScalerHR:    true,
				ScalerSpeed: true,
				HRFeaturesN: 17,
			},
		}
		ts := newTestServer(stub)
		defer ts.Close()

		Convey("When querying /health", func() {
			resp, err := http.Get(ts.URL + "/health")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			var h map[string]any
			So(json.NewDecoder(resp.Body).Decode(&h), ShouldBeNil)

			Convey("Then the artifact flags are reported", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(h["status"], ShouldEqual, "degraded")
				So(h["hr_model"], ShouldEqual, true)
				So(h["speed_model"], ShouldEqual, false)
				So(h["hr_features_n"], ShouldEqual, 17)
			})
		})
	})
}

func TestHandleStats(t *testing.T) {
	Convey("Given a server exposing stats", t, func() {
		stub := &stubService{
			stats: map[string]interface{}{"activeSessions": 3, "started": true},
		}
		ts := newTestServer(stub)
		defer ts.Close()

		Convey("When querying /stats", func() {
			resp, err := http.Get(ts.URL + "/stats")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			var stats map[string]any
			So(json.NewDecoder(resp.Body).Decode(&stats), ShouldBeNil)

			Convey("Then the service stats come back as JSON", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(stats["activeSessions"], ShouldEqual, 3)
				So(stats["started"], ShouldEqual, true)
			})
		})
	})
}

func TestHandleMetrics(t *testing.T) {
	Convey("Given a running server", t, func() {
		ts := newTestServer(&stubService{})
		defer ts.Close()

		Convey("When scraping /metrics", func() {
			resp, err := http.Get(ts.URL + "/metrics")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then Prometheus metrics are served", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
			})
		})
	})
}
