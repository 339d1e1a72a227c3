package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/ringlens/internal/config"
	"github.com/okian/ringlens/internal/domain/catalog"
	"github.com/okian/ringlens/internal/domain/stats"
	"github.com/okian/ringlens/pkg/logger"
)

func init() {
	if err := logger.Init(logger.WithOutput(os.Stderr)); err != nil {
		panic(err)
	}
	color.NoColor = true
}

func testEnv() *env {
	cfg := config.New(context.Background())
	cfg.LLMProvider = config.ProviderNone
	return &env{cfg: cfg, log: logger.Get()}
}

func writeExports(t *testing.T) string {
	dir := t.TempDir()
	files := map[string]string{
		"dailyactivity.csv": "day;score;steps\n2024-01-01;70;5000\n2024-01-02;90;15000\n",
		"dailysleep.csv":    "day;score\n2024-01-01;80\n2024-01-02;\n",
		"broken.csv":        "",
		"notes.txt":         "ignored",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestRootCommand(t *testing.T) {
	convey.Convey("Given the root command", t, func() {
		root := newRootCmd()

		convey.Convey("Then serve, report and mcp are registered", func() {
			names := map[string]bool{}
			for _, c := range root.Commands() {
				names[c.Name()] = true
			}
			convey.So(names["serve"], convey.ShouldBeTrue)
			convey.So(names["report"], convey.ShouldBeTrue)
			convey.So(names["mcp"], convey.ShouldBeTrue)
		})

		convey.Convey("When report runs without arguments", func() {
			root.SetArgs([]string{"report"})
			root.SetOut(&bytes.Buffer{})
			err := root.ExecuteContext(context.Background())

			convey.Convey("Then it fails on arguments", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestReport(t *testing.T) {
	convey.Convey("Given an export directory", t, func() {
		dir := writeExports(t)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		convey.Convey("When the report runs", func() {
			var out bytes.Buffer
			err := runReport(ctx, &out, testEnv(), []string{dir}, reportOptions{days: 1})
			text := out.String()

			convey.Convey("Then good files load and the broken one is reported", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(text, convey.ShouldContainSubstring, "2 file(s) loaded")
				convey.So(text, convey.ShouldContainSubstring, "! Error reading broken.csv")
			})

			convey.Convey("Then the overview shows means and deltas", func() {
				convey.So(text, convey.ShouldContainSubstring, "Avg Daily Steps")
				convey.So(text, convey.ShouldContainSubstring, "10000")
				convey.So(text, convey.ShouldContainSubstring, "+5000")
			})

			convey.Convey("Then the windowed averages use the last day", func() {
				convey.So(text, convey.ShouldContainSubstring, "Last 1 days")
				convey.So(text, convey.ShouldContainSubstring, "15000")
			})

			convey.Convey("Then present and absent sections are listed", func() {
				convey.So(text, convey.ShouldContainSubstring, "✓")
				convey.So(text, convey.ShouldContainSubstring, "dailysleep.csv, 2 rows")
			})
		})

		convey.Convey("When a summary is requested with the model disabled", func() {
			var out bytes.Buffer
			err := runReport(ctx, &out, testEnv(), []string{dir}, reportOptions{summary: true})

			convey.Convey("Then the fallback text is printed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out.String(), convey.ShouldContainSubstring, "Summary")
			})
		})

		convey.Convey("When the path does not exist", func() {
			err := runReport(ctx, &bytes.Buffer{}, testEnv(), []string{filepath.Join(dir, "missing")}, reportOptions{})

			convey.Convey("Then it fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestPrintMetric(t *testing.T) {
	line := func(delta float64, precision int) string {
		var out bytes.Buffer
		printMetric(&out, catalog.Aggregate{
			Label:     "Avg Sleep Score",
			Precision: precision,
			Summary:   stats.Summary{Mean: 80, Delta: &delta},
		})
		return strings.TrimSpace(out.String())
	}

	convey.Convey("Deltas are signed by their printed value", t, func() {
		convey.So(line(0.3, 0), convey.ShouldEndWith, "80  0")
		convey.So(line(-0.3, 0), convey.ShouldEndWith, "80  0")
		convey.So(line(0.3, 1), convey.ShouldEndWith, "+0.3")
		convey.So(line(-2.6, 0), convey.ShouldEndWith, "-3")
		convey.So(line(0.6, 0), convey.ShouldEndWith, "+1")
	})
}

func TestHandler(t *testing.T) {
	convey.Convey("Given the composed HTTP handler", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		e := testEnv()
		svc := newService(ctx, e)
		defer svc.Close()
		h := newHandler(ctx, e, svc)

		convey.Convey("Then the API, docs and dashboard are reachable", func() {
			for _, path := range []string{"/healthz", "/metrics", "/api-docs", "/openapi.yaml", "/", "/files"} {
				w := httptest.NewRecorder()
				h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			}
		})

		convey.Convey("Then responses carry a request id and CORS headers", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			convey.So(w.Header().Get("Access-Control-Allow-Origin"), convey.ShouldEqual, "*")
		})
	})
}

func TestUpdateSystemMetrics(t *testing.T) {
	convey.Convey("Updating system metrics does not panic", t, func() {
		convey.So(updateSystemMetrics, convey.ShouldNotPanic)
	})
}
