package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/wrpfuk/records/internal/adapters/dataset"
	"github.com/wrpfuk/records/internal/adapters/export"
	"github.com/wrpfuk/records/internal/adapters/http/api"
	"github.com/wrpfuk/records/internal/adapters/session"
	service "github.com/wrpfuk/records/internal/app"
	"github.com/wrpfuk/records/internal/domain/display"
	"github.com/wrpfuk/records/internal/domain/filter"
	"github.com/wrpfuk/records/internal/domain/view"
)

// mockDependencies records the last criteria it was asked about.
type mockDependencies struct {
	sessions *session.Store

	queryErr  error
	exportErr error
	reloadErr error
	status    dataset.Status

	lastCriteria filter.Criteria
	lastView     view.Kind
	lastFormat   export.Format
}

func newMock() *mockDependencies {
	return &mockDependencies{
		sessions: session.NewStore(),
		status:   dataset.Status{Loaded: true, Version: 1, Records: 2},
	}
}

func (m *mockDependencies) Query(_ context.Context, c filter.Criteria, k view.Kind) (display.Result, error) {
	m.lastCriteria, m.lastView = c, k
	if m.queryErr != nil {
		return display.Result{}, m.queryErr
	}
	rows := []display.Row{{Class: "82.5", Lift: "Squat", Weight: 205, Name: "Bea Jones"}}
	return display.Result{
		Title: display.Title(c.SearchMode(), c), Mode: display.ModeStructured,
		View: string(k), Count: len(rows), Rows: rows, Stale: m.status.Stale,
	}, nil
}

func (m *mockDependencies) Locations(_ context.Context, c filter.Criteria) ([]view.LocationCount, error) {
	m.lastCriteria = c
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	return []view.LocationCount{{Location: "Leeds", Count: 2}}, nil
}

func (m *mockDependencies) Options(_ context.Context) (filter.Options, error) {
	if m.queryErr != nil {
		return filter.Options{}, m.queryErr
	}
	return filter.Options{
		Sex:           []string{"F", "M"},
		Division:      []string{"Junior"},
		TestingStatus: []string{"Drug Tested", "Untested"},
		Equipment:     []string{"Raw"},
		WeightClass:   []string{"82.5"},
	}, nil
}

func (m *mockDependencies) Export(_ context.Context, w io.Writer, c filter.Criteria, k view.Kind, f export.Format) error {
	m.lastCriteria, m.lastView, m.lastFormat = c, k, f
	if m.exportErr != nil {
		return m.exportErr
	}
	_, err := fmt.Fprint(w, "Class,Lift\n82.5,Squat\n")
	return err
}

func (m *mockDependencies) CreateSession(ctx context.Context) session.Session {
	return m.sessions.Create(ctx)
}

func (m *mockDependencies) GetSession(ctx context.Context, id string) (session.Session, error) {
	return m.sessions.Get(ctx, id)
}

func (m *mockDependencies) UpdateSession(ctx context.Context, id string, c filter.Criteria) (session.Session, error) {
	return m.sessions.Update(ctx, id, c)
}

func (m *mockDependencies) ResetSession(ctx context.Context, id string) (session.Session, error) {
	return m.sessions.Reset(ctx, id)
}

func (m *mockDependencies) DeleteSession(ctx context.Context, id string) error {
	return m.sessions.Delete(ctx, id)
}

func (m *mockDependencies) Status() dataset.Status { return m.status }

func (m *mockDependencies) Reload(_ context.Context) (dataset.Status, error) {
	return m.status, m.reloadErr
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newMux(deps *mockDependencies) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"started": true}}).
		Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
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
	Convey("Given a registered API server", t, func() {
		deps := newMock()
		mux := newMux(deps)

		Convey("Health serves Prometheus text", func() {
			w := do(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Readiness follows the dataset state", func() {
			So(do(mux, http.MethodGet, "/readyz", "").Code, ShouldEqual, http.StatusOK)

			deps.status = dataset.Status{Loaded: true, Stale: true, LastError: "boom"}
			w := do(mux, http.MethodGet, "/readyz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"degraded"`)

			deps.status = dataset.Status{}
			So(do(mux, http.MethodGet, "/readyz", "").Code, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("Stats are returned as JSON", func() {
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"started":true`)
		})

		Convey("Wrong methods are not found", func() {
			So(do(mux, http.MethodPost, "/records", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodPost, "/stats", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodGet, "/sessions", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodGet, "/admin/reload", "").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestRecordsHandler(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := newMock()
		mux := newMux(deps)

		Convey("Query parameters become criteria", func() {
			w := do(mux, http.MethodGet, "/records?division=Junior&class=82.5&testing=Drug+Tested&view=full", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastCriteria, ShouldResemble, filter.Criteria{
				Sex: filter.All, Division: "Junior", TestingStatus: "Drug Tested",
				Equipment: filter.All, WeightClass: "82.5",
			})
			So(deps.lastView, ShouldEqual, view.FullPower)

			var res display.Result
			So(json.Unmarshal(w.Body.Bytes(), &res), ShouldBeNil)
			So(res.Count, ShouldEqual, 1)
			So(res.Rows[0].Name, ShouldEqual, "Bea Jones")
			So(res.Title, ShouldStartWith, "Top Records – Junior – 82.5")
		})

		Convey("Unknown views are bad requests", func() {
			w := do(mux, http.MethodGet, "/records?view=sideways", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w)["code"], ShouldEqual, "bad_request")

			w = do(mux, http.MethodGet, "/records?view=locations", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w)["message"], ShouldContainSubstring, "/locations")
		})

		Convey("An unloaded dataset is unavailable", func() {
			deps.queryErr = dataset.ErrNotLoaded
			So(do(mux, http.MethodGet, "/records", "").Code, ShouldEqual, http.StatusServiceUnavailable)
			So(do(mux, http.MethodGet, "/options", "").Code, ShouldEqual, http.StatusServiceUnavailable)
			So(do(mux, http.MethodGet, "/locations", "").Code, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("Unexpected errors are internal", func() {
			deps.queryErr = errors.New("boom")
			w := do(mux, http.MethodGet, "/records", "")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(decodeError(w), ShouldResemble, map[string]string{"code": "internal_error", "message": "boom"})
		})

		Convey("Options lists start with All", func() {
			w := do(mux, http.MethodGet, "/options", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var opts filter.Options
			So(json.Unmarshal(w.Body.Bytes(), &opts), ShouldBeNil)
			So(opts.Sex, ShouldResemble, []string{"All", "F", "M"})
			So(opts.TestingStatus, ShouldResemble, []string{"All", "Drug Tested", "Untested"})
		})

		Convey("Locations are counted", func() {
			w := do(mux, http.MethodGet, "/locations?search=leeds", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastCriteria.Search, ShouldEqual, "leeds")
			So(w.Body.String(), ShouldContainSubstring, `"location":"Leeds"`)
			So(w.Body.String(), ShouldContainSubstring, `"stale":false`)
		})

		Convey("Answers from a stale snapshot say so", func() {
			deps.status.Stale = true
			deps.status.LastError = "dataset missing required column: Weight"

			var res display.Result
			w := do(mux, http.MethodGet, "/records", "")
			So(json.Unmarshal(w.Body.Bytes(), &res), ShouldBeNil)
			So(res.Stale, ShouldBeTrue)

			w = do(mux, http.MethodGet, "/locations", "")
			So(w.Body.String(), ShouldContainSubstring, `"stale":true`)

			w = do(mux, http.MethodGet, "/records/export?format=csv", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get(api.StaleHeader), ShouldEqual, "true")
		})
	})
}

func TestExportHandler(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := newMock()
		mux := newMux(deps)

		Convey("The default export is a CSV download", func() {
			w := do(mux, http.MethodGet, "/records/export?sex=F", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastFormat, ShouldEqual, export.CSV)
			So(deps.lastCriteria.Sex, ShouldEqual, "F")
			So(w.Header().Get("Content-Type"), ShouldStartWith, "text/csv")
			So(w.Header().Get("Content-Disposition"), ShouldContainSubstring, "filtered_records.csv")
			So(w.Body.String(), ShouldStartWith, "Class,Lift")
		})

		Convey("Other formats set their file name", func() {
			w := do(mux, http.MethodGet, "/records/export?format=yml", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Disposition"), ShouldContainSubstring, "filtered_records.yaml")
		})

		Convey("Unknown formats are bad requests", func() {
			w := do(mux, http.MethodGet, "/records/export?format=xls", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w)["message"], ShouldContainSubstring, "xls")
		})

		Convey("Oversized exports are bad requests with no partial body", func() {
			deps.exportErr = fmt.Errorf("%w: 2 rows, limit 1", service.ErrExportTooLarge)
			w := do(mux, http.MethodGet, "/records/export", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(w.Header().Get("Content-Disposition"), ShouldBeBlank)
		})
	})
}

func TestSessionsHandler(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := newMock()
		mux := newMux(deps)

		w := do(mux, http.MethodPost, "/sessions", "")
		So(w.Code, ShouldEqual, http.StatusCreated)
		var created session.Session
		So(json.Unmarshal(w.Body.Bytes(), &created), ShouldBeNil)
		So(created.ID, ShouldNotBeBlank)
		So(created.Criteria, ShouldResemble, filter.Default())
		base := "/sessions/" + created.ID

		Convey("Criteria can be read and replaced", func() {
			w := do(mux, http.MethodPut, base, `{"sex":"F","division":"Junior"}`)
			So(w.Code, ShouldEqual, http.StatusOK)

			w = do(mux, http.MethodGet, base, "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var got session.Session
			So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
			So(got.Criteria.Sex, ShouldEqual, "F")
			So(got.Criteria.Equipment, ShouldEqual, filter.All)

			Convey("And queries use them", func() {
				w := do(mux, http.MethodGet, base+"/records?view=single", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastCriteria.Division, ShouldEqual, "Junior")
				So(deps.lastView, ShouldEqual, view.SingleLifts)
			})

			Convey("And reset restores defaults", func() {
				w := do(mux, http.MethodPost, base+"/reset", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"sex":"All"`)
			})
		})

		Convey("Malformed bodies are bad requests", func() {
			So(do(mux, http.MethodPut, base, `{"sex":`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodPut, base, `{"colour":"red"}`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Deleted and unknown sessions are not found", func() {
			So(do(mux, http.MethodDelete, base, "").Code, ShouldEqual, http.StatusNoContent)
			w := do(mux, http.MethodGet, base, "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(decodeError(w)["code"], ShouldEqual, "not_found")
			So(do(mux, http.MethodGet, "/sessions/nope/records", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Unknown subpaths and methods are not found", func() {
			So(do(mux, http.MethodGet, base+"/reset", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodGet, base+"/records/extra", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodGet, "/sessions/", "").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestAdminHandler(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := newMock()
		mux := newMux(deps)

		Convey("A successful reload reports the dataset", func() {
			w := do(mux, http.MethodPost, "/admin/reload", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"reloaded":true`)
		})

		Convey("A failed reload is an internal error", func() {
			deps.reloadErr = dataset.ErrMissingColumn
			w := do(mux, http.MethodPost, "/admin/reload", "")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(decodeError(w)["code"], ShouldEqual, "reload_failed")
		})
	})
}

func TestErrorHelpers(t *testing.T) {
	Convey("Operation errors keep their kind and cause", t, func() {
		cause := errors.New("eof")
		err := api.WrapKind("decode", api.ErrBadRequest, cause)
		So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
		So(errors.Is(err, cause), ShouldBeTrue)
		So(err.Error(), ShouldEqual, "decode: bad request: eof")

		So(api.WrapKind("x", api.ErrBadRequest, nil), ShouldBeNil)
		So(errors.Is(api.NewKind("view", api.ErrBadRequest), api.ErrBadRequest), ShouldBeTrue)
	})
}
