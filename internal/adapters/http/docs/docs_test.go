package docs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/keelan/gated/internal/adapters/http/api"
	"github.com/smartystreets/goconvey/convey"
)

func TestDocsHandler(t *testing.T) {
	convey.Convey("Given a docs handler", t, func() {
		ctx := context.Background()
		router := api.NewRouter()

		convey.Convey("When registering the docs routes", func() {
			Register(ctx, router)

			convey.Convey("Then it should handle /openapi.yaml", func() {
				req := httptest.NewRequest("GET", "/openapi.yaml", http.NoBody)
				w := httptest.NewRecorder()
				router.ServeHTTP(w, req)

				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "application/yaml; charset=utf-8")
				convey.So(w.Body.Len(), convey.ShouldBeGreaterThan, 0)
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "/api/checkpoint/verify")
			})

			convey.Convey("And it should handle /api-docs", func() {
				req := httptest.NewRequest("GET", "/api-docs", http.NoBody)
				w := httptest.NewRecorder()
				router.ServeHTTP(w, req)

				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "text/html; charset=utf-8")
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "redoc")
			})
		})

		convey.Convey("When registering with a nil router", func() {
			convey.So(func() { Register(ctx, nil) }, convey.ShouldPanic)
		})
	})
}
