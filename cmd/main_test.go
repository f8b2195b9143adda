package main

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/okian/workpulse/internal/config"
	"github.com/okian/workpulse/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When configuration comes from the environment", func() {
			_ = os.Setenv("WORKPULSE_ADDR", ":8080")
			_ = os.Setenv("WORKPULSE_QUEUE_SIZE", "1000")
			_ = os.Setenv("WORKPULSE_WORKER_COUNT", "4")
			_ = os.Setenv("WORKPULSE_DEFAULT_DELIMITER", "semicolon")
			defer func() {
				_ = os.Unsetenv("WORKPULSE_ADDR")
				_ = os.Unsetenv("WORKPULSE_QUEUE_SIZE")
				_ = os.Unsetenv("WORKPULSE_WORKER_COUNT")
				_ = os.Unsetenv("WORKPULSE_DEFAULT_DELIMITER")
			}()

			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then the service is built from it", func() {
				svc, err := newService(cfg)
				convey.So(err, convey.ShouldBeNil)

				stats := svc.GetStats()
				convey.So(stats["workerCount"], convey.ShouldEqual, 4)
				convey.So(stats["queueSize"], convey.ShouldEqual, 1000)
				convey.So(stats["started"], convey.ShouldBeFalse)
			})
		})

		convey.Convey("When the configured delimiter is invalid", func() {
			cfg := config.New()
			cfg.DefaultDelimiter = "|"

			convey.Convey("Then the service is not built", func() {
				svc, err := newService(cfg)
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(svc, convey.ShouldBeNil)
			})
		})
	})
}

func TestHTTPServer(t *testing.T) {
	convey.Convey("Given a started service behind the HTTP server", t, func() {
		ctx := context.Background()
		cfg := config.New()
		cfg.WorkerCount = 1

		svc, err := newService(cfg)
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		srv := newHTTPServer(ctx, cfg, svc)
		convey.So(srv.Addr, convey.ShouldEqual, cfg.Addr)

		get := func(path string) *httptest.ResponseRecorder {
			rec := httptest.NewRecorder()
			srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			return rec
		}

		convey.Convey("Then the docs and operational routes are registered", func() {
			convey.So(get("/api-docs").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/openapi.yaml").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/healthz").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/stats").Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("Then an unknown analysis is not found", func() {
			convey.So(get("/analyses/nope").Code, convey.ShouldEqual, http.StatusNotFound)
		})

		convey.Convey("Then a submitted pair is accepted and finishes", func() {
			var body bytes.Buffer
			mw := multipart.NewWriter(&body)
			fw, _ := mw.CreateFormFile("activity", "activity.csv")
			_, _ = fw.Write([]byte("App,Title,Begin,End\nMicrosoft Word,report,2024-03-04 09:00:00,2024-03-04 09:30:00\n"))
			fw, _ = mw.CreateFormFile("survey", "survey.csv")
			_, _ = fw.Write([]byte("Date,Productivity,Vigor,Dedication,Absorption\n04-03-2024,3,4,4,3\n"))
			_ = mw.Close()

			req := httptest.NewRequest(http.MethodPost, "/analyses", &body)
			req.Header.Set("Content-Type", mw.FormDataContentType())
			rec := httptest.NewRecorder()
			srv.Handler.ServeHTTP(rec, req)

			convey.So(rec.Code, convey.ShouldEqual, http.StatusAccepted)
			location := rec.Header().Get("Location")
			convey.So(location, convey.ShouldStartWith, "/analyses/")

			deadline := time.Now().Add(5 * time.Second)
			code := 0
			for time.Now().Before(deadline) {
				if code = get(location + "/days").Code; code == http.StatusOK {
					break
				}
				time.Sleep(10 * time.Millisecond)
			}
			convey.So(code, convey.ShouldEqual, http.StatusOK)
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When the system metrics updater runs", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.Convey("Then it returns when the context ends", func() {
				convey.So(func() {
					startSystemMetricsUpdater(ctx)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When system metrics are updated", func() {
			convey.Convey("Then it does not panic", func() {
				convey.So(updateSystemMetrics, convey.ShouldNotPanic)
			})
		})
	})
}

func TestRunStopsOnCancel(t *testing.T) {
	convey.Convey("Given run on an ephemeral port", t, func() {
		cfg := config.New()
		cfg.Addr = "127.0.0.1:0"
		cfg.WorkerCount = 1

		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()

		convey.Convey("Then it returns cleanly once the context is cancelled", func() {
			convey.So(run(ctx, cfg), convey.ShouldBeNil)
		})
	})
}
