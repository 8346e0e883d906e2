package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/morozRed/doxnav/internal/logging"
	"github.com/morozRed/doxnav/internal/site"
)

const fixtureDir = "../site/testdata/html"

func newTestServer(t *testing.T) (*Server, *site.Site) {
	t.Helper()
	st, err := site.Load(fixtureDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return New(st, logging.Discard()), st
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := get(t, srv, "/health")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status": "ok"`) {
		t.Fatalf("unexpected health response %d %q", rec.Code, rec.Body.String())
	}
}

func TestTreeEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	var plain treeResponse
	decode(t, get(t, srv, "/api/tree"), &plain)
	if len(plain.Entries) != 22 || len(plain.Errors) != 0 {
		t.Fatalf("expected 22 entries without errors, got %d %v", len(plain.Entries), plain.Errors)
	}

	var expanded treeResponse
	decode(t, get(t, srv, "/api/tree?expand=1"), &expanded)
	if len(expanded.Entries) <= len(plain.Entries) {
		t.Fatalf("expected expansion to add entries, got %d", len(expanded.Entries))
	}
	if len(expanded.Errors) != 1 || !strings.Contains(expanded.Errors[0], "classasyncClientTCP") {
		t.Fatalf("expected missing fragment error, got %v", expanded.Errors)
	}
}

func TestResolveEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	var resp resolveResponse
	decode(t, get(t, srv, "/api/resolve?page=classConnectionTCP.html"), &resp)
	var got []string
	for _, e := range resp.Path {
		got = append(got, e.Title)
	}
	want := "TrafficSignals.ai Common Open Source Library/Classes/Class List/ConnectionTCP"
	if strings.Join(got, "/") != want {
		t.Fatalf("unexpected path %v", got)
	}

	rec := get(t, srv, "/api/resolve?page=nowhere.html")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"path": []`) {
		t.Fatalf("expected empty path for miss, got %d %q", rec.Code, rec.Body.String())
	}

	if rec := get(t, srv, "/api/resolve"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without page, got %d", rec.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	var resp searchResponse
	decode(t, get(t, srv, "/api/search?q=connection+manager&expand=1&limit=1"), &resp)
	if len(resp.Results) != 1 || resp.Results[0].Title != "ConnectionManager" {
		t.Fatalf("unexpected results %+v", resp.Results)
	}

	if rec := get(t, srv, "/api/search"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without query, got %d", rec.Code)
	}
}

func TestFragmentEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	var resp fragmentResponse
	decode(t, get(t, srv, "/api/fragments/annotated_dup"), &resp)
	if resp.Sentinel != "annotated_dup" || len(resp.Records) != 4 || resp.Records[0].Sentinel != "classasyncClientTCP" {
		t.Fatalf("unexpected fragment %+v", resp)
	}

	if rec := get(t, srv, "/api/fragments/classasyncClientTCP"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing fragment, got %d", rec.Code)
	}
	if rec := get(t, srv, "/api/fragments/bad-name"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid sentinel, got %d", rec.Code)
	}
}

func TestSidebarEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := get(t, srv, "/sidebar?page=classConnectionTCP.html")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content type %q", ct)
	}
	body := rec.Body.String()
	for _, fragment := range []string{
		`<nav id="side-nav" class="navtree">`,
		`<li class="expanded selected"><a href="classConnectionTCP.html">ConnectionTCP</a></li>`,
		`data-sentinel="hierarchy"`,
	} {
		if !strings.Contains(body, fragment) {
			t.Fatalf("expected %q in sidebar:\n%s", fragment, body)
		}
	}
}

func TestSwapNotifiesWebSocketClients(t *testing.T) {
	srv, st := newTestServer(t)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.CloseNow()

	deadline := time.Now().Add(2 * time.Second)
	for srv.Clients() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	srv.Swap(st)

	typ, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if typ != websocket.MessageText || string(data) != `{"type":"reload"}` {
		t.Fatalf("unexpected message %v %q", typ, data)
	}
	if srv.Site() != st {
		t.Fatalf("expected swapped site to be served")
	}
}

func TestRequestLoggerRecordsStatus(t *testing.T) {
	var buf strings.Builder
	log := logging.New(logging.WithOutput(&buf), logging.WithFormat("json"))
	h := RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		io.WriteString(w, "short and stout")
	}))

	get(t, h, "/pot")

	out := buf.String()
	if !strings.Contains(out, `"status":418`) || !strings.Contains(out, `"path":"/pot"`) {
		t.Fatalf("unexpected log line %q", out)
	}
}
