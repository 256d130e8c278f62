package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/wrpfuk/records/internal/config"
	"github.com/wrpfuk/records/pkg/logger"
	"github.com/wrpfuk/records/pkg/metrics"
)

const sheet = "Full Name,Weight,Class,Division,Lift,Date,Equipment,Record Type,Location,Sex\n" +
	"Alice Smith,200,82.5,JuniorDT,S,14/05/2023,Bare,Full Power,Manchester,F\n"

func TestMainWiring(t *testing.T) {
	convey.Convey("Given configuration from the environment", t, func() {
		path := filepath.Join(t.TempDir(), "records.csv")
		convey.So(os.WriteFile(path, []byte(sheet), 0o600), convey.ShouldBeNil)

		_ = os.Setenv("RECORDS_DATASET_PATH", path)
		_ = os.Setenv("RECORDS_MAX_SESSIONS", "5")
		defer func() {
			_ = os.Unsetenv("RECORDS_DATASET_PATH")
			_ = os.Unsetenv("RECORDS_MAX_SESSIONS")
		}()

		ctx := context.Background()
		cfg, err := config.Load(ctx)
		convey.So(err, convey.ShouldBeNil)
		convey.So(cfg.DatasetPath, convey.ShouldEqual, path)
		convey.So(cfg.MaxSessions, convey.ShouldEqual, 5)

		convey.Convey("When the service starts", func() {
			svc := newService(cfg, logger.Nop())
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop()
			mux := newMux(ctx, svc)

			serve := func(method, target string) *httptest.ResponseRecorder {
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest(method, target, http.NoBody))
				return w
			}

			convey.Convey("Then metrics follow the configured names", func() {
				cfg.MetricsNamespace = "ops"
				metrics.Configure(metricsOptions(cfg)...)
				defer metrics.Configure(metricsOptions(config.New(ctx))...)

				serve(http.MethodGet, "/records")
				w := serve(http.MethodGet, "/healthz")
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "ops_records_http_requests_total")
			})

			convey.Convey("Then every surface is routed", func() {
				convey.So(serve(http.MethodGet, "/records").Code, convey.ShouldEqual, http.StatusOK)
				convey.So(serve(http.MethodGet, "/readyz").Code, convey.ShouldEqual, http.StatusOK)
				convey.So(serve(http.MethodGet, "/healthz").Code, convey.ShouldEqual, http.StatusOK)
				convey.So(serve(http.MethodGet, "/openapi.yaml").Code, convey.ShouldEqual, http.StatusOK)
				convey.So(serve(http.MethodGet, "/").Code, convey.ShouldEqual, http.StatusOK)
				convey.So(serve(http.MethodPost, "/sessions").Code, convey.ShouldEqual, http.StatusCreated)
			})

			convey.Convey("And records come from the configured file", func() {
				w := serve(http.MethodGet, "/records?search=alice")
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "Alice Smith")
			})
		})
	})
}
