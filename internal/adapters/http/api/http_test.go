package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/keelan/gated/internal/adapters/http/api"
	app "github.com/keelan/gated/internal/app"
	. "github.com/smartystreets/goconvey/convey"
)

var (
	sessionPattern = regexp.MustCompile(`^sess_[0-9a-f]{8}$`)
	proofPattern   = regexp.MustCompile(`^proof_[0-9a-f]{12}$`)
	keyPattern     = regexp.MustCompile(`^KEY-[0-9A-F]{6}$`)
)

// newGateRouter builds a router with the full route table, backed by a
// real (stateless) gate service.
func newGateRouter() *api.Router {
	svc := app.New()
	server := api.NewServer(svc, svc)
	router := api.NewRouter()
	server.Register(context.Background(), router)
	return router
}

func doRequest(router *api.Router, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
	return body
}

func TestHealthEndpoint(t *testing.T) {
	Convey("Given the gate router", t, func() {
		router := newGateRouter()

		Convey("When requesting GET /api/health", func() {
			w := doRequest(router, "GET", "/api/health", "")

			Convey("Then it reports healthy with a timestamp", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldStartWith, "application/json")
				So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
				body := decode(w)
				So(body["ok"], ShouldEqual, true)
				So(body["status"], ShouldEqual, "healthy")
				So(body["time"], ShouldNotBeEmpty)
			})
		})
	})
}

func TestConfigEndpoint(t *testing.T) {
	Convey("Given the gate router", t, func() {
		router := newGateRouter()

		Convey("When requesting GET /api/config", func() {
			w := doRequest(router, "GET", "/api/config", "")

			Convey("Then it advertises the default gate shape", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode(w)
				So(body["ok"], ShouldEqual, true)
				So(body["checkpoints"], ShouldEqual, 3)
				So(body["cooldownSeconds"], ShouldEqual, 900)
				providers, ok := body["providers"].([]any)
				So(ok, ShouldBeTrue)
				So(len(providers), ShouldEqual, 3)
				So(providers[0], ShouldEqual, "shortlink")
			})
		})
	})
}

func TestSessionEndpoints(t *testing.T) {
	Convey("Given the gate router", t, func() {
		router := newGateRouter()

		Convey("When starting a session", func() {
			w := doRequest(router, "POST", "/api/session/start", "")

			Convey("Then a fresh session id is minted", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode(w)
				So(body["ok"], ShouldEqual, true)
				So(sessionPattern.MatchString(body["sessionId"].(string)), ShouldBeTrue)
				So(body["nextCheckpoint"], ShouldEqual, 1)
				So(body["expiresIn"], ShouldEqual, 600)
			})
		})

		Convey("When starting two sessions", func() {
			first := decode(doRequest(router, "POST", "/api/session/start", ""))
			second := decode(doRequest(router, "POST", "/api/session/start", ""))

			Convey("Then the ids differ", func() {
				So(first["sessionId"], ShouldNotEqual, second["sessionId"])
			})
		})

		Convey("When querying status with a sessionId", func() {
			w := doRequest(router, "GET", "/api/session/status?sessionId=sess_deadbeef", "")

			Convey("Then the id is echoed with a canned state", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode(w)
				So(body["ok"], ShouldEqual, true)
				So(body["sessionId"], ShouldEqual, "sess_deadbeef")
				So(body["checkpoint"], ShouldEqual, 1)
				So(body["completed"], ShouldEqual, false)
			})
		})

		Convey("When querying status for an id that was never issued", func() {
			w := doRequest(router, "GET", "/api/session/status?sessionId=sess_00000000", "")

			Convey("Then the response is identical in shape — nothing is tracked", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode(w)
				So(body["sessionId"], ShouldEqual, "sess_00000000")
				So(body["completed"], ShouldEqual, false)
			})
		})

		Convey("When querying status without a sessionId", func() {
			w := doRequest(router, "GET", "/api/session/status", "")

			Convey("Then it yields 400 with the contract message", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				body := decode(w)
				So(body["ok"], ShouldEqual, false)
				So(body["error"], ShouldEqual, "sessionId is required")
			})
		})

		Convey("When refreshing a session", func() {
			w := doRequest(router, "POST", "/api/session/refresh", "")

			Convey("Then a new id is minted", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode(w)
				So(body["ok"], ShouldEqual, true)
				So(sessionPattern.MatchString(body["sessionId"].(string)), ShouldBeTrue)
				So(body["expiresIn"], ShouldEqual, 600)
			})
		})
	})
}

func TestCheckpointEndpoints(t *testing.T) {
	Convey("Given the gate router", t, func() {
		router := newGateRouter()

		Convey("When requesting the next checkpoint", func() {
			w := doRequest(router, "GET", "/api/checkpoint/next", "")

			Convey("Then a proof token is minted for checkpoint 1", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode(w)
				So(body["ok"], ShouldEqual, true)
				So(body["checkpoint"], ShouldEqual, 1)
				So(body["provider"], ShouldEqual, "shortlink")
				So(proofPattern.MatchString(body["proofToken"].(string)), ShouldBeTrue)
			})
		})

		Convey("When completing a checkpoint with a JSON body", func() {
			w := doRequest(router, "POST", "/api/checkpoint/complete", `{"answer":42}`)

			Convey("Then the body is echoed and advancement is canned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode(w)
				So(body["ok"], ShouldEqual, true)
				received, ok := body["received"].(map[string]any)
				So(ok, ShouldBeTrue)
				So(received["answer"], ShouldEqual, 42)
				So(body["nextCheckpoint"], ShouldEqual, 2)
				So(body["nextUrl"], ShouldEqual, "/checkpoint/2")
				So(body["expiresIn"], ShouldEqual, 120)
			})
		})

		Convey("When completing a checkpoint with malformed JSON", func() {
			w := doRequest(router, "POST", "/api/checkpoint/complete", `{not json`)

			Convey("Then it yields 400, never 500", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				body := decode(w)
				So(body["ok"], ShouldEqual, false)
				So(body["error"], ShouldEqual, "invalid JSON body")
			})
		})

		Convey("When verifying a proof token", func() {
			w := doRequest(router, "POST", "/api/checkpoint/verify", `{"proofToken":"proof_0123456789ab"}`)

			Convey("Then verification always succeeds with an echo", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode(w)
				So(body["ok"], ShouldEqual, true)
				So(body["verified"], ShouldEqual, true)
				So(body["proofToken"], ShouldEqual, "proof_0123456789ab")
			})
		})

		Convey("When verifying without a proofToken", func() {
			w := doRequest(router, "POST", "/api/checkpoint/verify", `{"other":"field"}`)

			Convey("Then it yields 400 with the contract message", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				body := decode(w)
				So(body["ok"], ShouldEqual, false)
				So(body["error"], ShouldEqual, "proofToken is required")
			})
		})

		Convey("When verifying with malformed JSON", func() {
			w := doRequest(router, "POST", "/api/checkpoint/verify", `no json here`)

			Convey("Then the parse failure counts as an absent proofToken", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(w)["error"], ShouldEqual, "proofToken is required")
			})
		})
	})
}

func TestKeyEndpoints(t *testing.T) {
	Convey("Given the gate router", t, func() {
		router := newGateRouter()

		Convey("When requesting a key", func() {
			w := doRequest(router, "GET", "/api/key", "")

			Convey("Then a fresh key is minted", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode(w)
				So(body["ok"], ShouldEqual, true)
				So(keyPattern.MatchString(body["key"].(string)), ShouldBeTrue)
				So(body["expiresIn"], ShouldEqual, 900)
			})
		})

		Convey("When validating a key", func() {
			w := doRequest(router, "POST", "/api/key/validate", `{"key":"KEY-ABC123"}`)

			Convey("Then validation always succeeds with an echo", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode(w)
				So(body["ok"], ShouldEqual, true)
				So(body["valid"], ShouldEqual, true)
				So(body["key"], ShouldEqual, "KEY-ABC123")
			})
		})

		Convey("When validating without a key", func() {
			w := doRequest(router, "POST", "/api/key/validate", `{}`)

			Convey("Then it yields 400 with the contract message", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(w)["error"], ShouldEqual, "key is required")
			})
		})

		Convey("When revoking a key", func() {
			w := doRequest(router, "POST", "/api/key/revoke", `{"key":"KEY-ABC123"}`)

			Convey("Then revocation always succeeds with an echo", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode(w)
				So(body["ok"], ShouldEqual, true)
				So(body["revoked"], ShouldEqual, true)
				So(body["key"], ShouldEqual, "KEY-ABC123")
			})
		})

		Convey("When revoking without a key", func() {
			w := doRequest(router, "POST", "/api/key/revoke", `{"token":"KEY-ABC123"}`)

			Convey("Then it yields 400 with the contract message", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(w)["error"], ShouldEqual, "key is required")
			})
		})

		Convey("When a revoked key is validated again", func() {
			_ = doRequest(router, "POST", "/api/key/revoke", `{"key":"KEY-ABC123"}`)
			w := doRequest(router, "POST", "/api/key/validate", `{"key":"KEY-ABC123"}`)

			Convey("Then it still validates — revocation is a no-op", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode(w)["valid"], ShouldEqual, true)
			})
		})
	})
}

func TestDispatcher(t *testing.T) {
	Convey("Given the gate router", t, func() {
		router := newGateRouter()

		Convey("When requesting an unknown path", func() {
			w := doRequest(router, "GET", "/api/unknown", "")

			Convey("Then it yields 404 with the contract message", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				body := decode(w)
				So(body["ok"], ShouldEqual, false)
				So(body["error"], ShouldEqual, "Not found")
			})
		})

		Convey("When using the wrong method on a known path", func() {
			w := doRequest(router, "DELETE", "/api/key", "")

			Convey("Then it yields 404", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(decode(w)["error"], ShouldEqual, "Not found")
			})
		})

		Convey("When the path carries a query string", func() {
			w := doRequest(router, "GET", "/api/health?verbose=1", "")

			Convey("Then the lookup ignores the query string", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When sending an OPTIONS preflight", func() {
			w := doRequest(router, "OPTIONS", "/api/anything/at/all", "")

			Convey("Then it short-circuits with 204 and CORS headers", func() {
				So(w.Code, ShouldEqual, http.StatusNoContent)
				So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
				So(w.Header().Get("Access-Control-Allow-Methods"), ShouldContainSubstring, "POST")
				So(w.Body.Len(), ShouldEqual, 0)
			})
		})

		Convey("When a handler panics", func() {
			faulty := api.NewRouter()
			faulty.Handle(http.MethodGet, "/boom", func(http.ResponseWriter, *http.Request) {
				panic("handler fault")
			})
			w := doRequest(faulty, "GET", "/boom", "")

			Convey("Then the fault is suppressed into a generic 500", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				body := decode(w)
				So(body["ok"], ShouldEqual, false)
				So(body["error"], ShouldEqual, "Internal server error")
			})
		})

		Convey("When requesting any defined route", func() {
			routes := []struct{ method, target, body string }{
				{"GET", "/api/health", ""},
				{"GET", "/api/config", ""},
				{"POST", "/api/session/start", ""},
				{"POST", "/api/session/refresh", ""},
				{"GET", "/api/checkpoint/next", ""},
				{"POST", "/api/checkpoint/complete", `{"answer":42}`},
				{"GET", "/api/key", ""},
			}

			Convey("Then every success body carries ok true and a request id", func() {
				for _, rt := range routes {
					w := doRequest(router, rt.method, rt.target, rt.body)
					So(w.Code, ShouldEqual, http.StatusOK)
					So(decode(w)["ok"], ShouldEqual, true)
					So(w.Header().Get("X-Request-Id"), ShouldNotBeEmpty)
				}
			})
		})

		Convey("When a caller supplies a request id", func() {
			req := httptest.NewRequest("GET", "/api/health", http.NoBody)
			req.Header.Set("X-Request-Id", "caller-id-1")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Convey("Then it is echoed back", func() {
				So(w.Header().Get("X-Request-Id"), ShouldEqual, "caller-id-1")
			})
		})
	})
}

func TestStatsEndpoint(t *testing.T) {
	Convey("Given the gate router", t, func() {
		router := newGateRouter()

		Convey("When activity has occurred", func() {
			_ = doRequest(router, "POST", "/api/session/start", "")
			_ = doRequest(router, "GET", "/api/checkpoint/next", "")
			_ = doRequest(router, "GET", "/api/key", "")

			w := doRequest(router, "GET", "/api/stats", "")

			Convey("Then issuance counters reflect it", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode(w)
				So(body["ok"], ShouldEqual, true)
				So(body["sessionsIssued"], ShouldEqual, 1)
				So(body["proofsIssued"], ShouldEqual, 1)
				So(body["keysIssued"], ShouldEqual, 1)
			})
		})
	})
}

func TestMetricsEndpoint(t *testing.T) {
	Convey("Given the gate router", t, func() {
		router := newGateRouter()

		Convey("When scraping /metrics after some traffic", func() {
			_ = doRequest(router, "GET", "/api/health", "")
			w := doRequest(router, "GET", "/metrics", "")

			Convey("Then the exposition includes gate metric families", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "gated_gate_http_requests_total")
			})
		})
	})
}
