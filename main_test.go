package main

import (
	"io"
	"net"
	"net/http"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/platformdemo/backend/config"
	"github.com/platformdemo/backend/handlers"
	"github.com/platformdemo/backend/services"
)

type testServer struct {
	url  string
	stop chan os.Signal
	code chan int
}

func startServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{GinMode: "test", FiboNumber: 5}
	crash, crashed := newCrashHook()
	demo := handlers.NewDemoHandler(cfg, "test-host", services.NewEventLog(), nil, crash)
	engine, err := handlers.NewEngine(cfg, demo)
	if err != nil {
		t.Fatal(err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ts := &testServer{
		url:  "http://" + ln.Addr().String(),
		stop: make(chan os.Signal, 1),
		code: make(chan int, 1),
	}
	go func() {
		ts.code <- run(&http.Server{Handler: engine}, ln, ts.stop, crashed)
	}()
	return ts
}

func (ts *testServer) waitExit(t *testing.T) int {
	t.Helper()
	select {
	case code := <-ts.code:
		return code
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return")
		return -1
	}
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("GET %s: reading body: %v", url, err)
	}
	return resp.StatusCode, string(body)
}

func TestRunCrashDeliversReplyThenExits(t *testing.T) {
	ts := startServer(t)

	if status, body := get(t, ts.url+"/fibo"); status != http.StatusOK || body != `{"fibo":8}` {
		t.Fatalf("GET /fibo = %d %s", status, body)
	}

	status, body := get(t, ts.url+"/crashPod")
	if status != http.StatusOK {
		t.Errorf("status = %d, want 200", status)
	}
	if body != `{"hostname":"test-host"}` {
		t.Errorf("body = %s", body)
	}

	if code := ts.waitExit(t); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}

	client := &http.Client{Timeout: time.Second}
	if resp, err := client.Get(ts.url + "/health"); err == nil {
		resp.Body.Close()
		t.Error("server still answering after the crash")
	}
}

func TestRunSignalExitsCleanly(t *testing.T) {
	ts := startServer(t)

	if status, body := get(t, ts.url+"/health"); status != http.StatusOK || body != `{"health":"OK"}` {
		t.Fatalf("GET /health = %d %s", status, body)
	}

	ts.stop <- syscall.SIGTERM
	if code := ts.waitExit(t); code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
}

func TestRunServeErrorExitsNonZero(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ln.Close()

	_, crashed := newCrashHook()
	if code := run(&http.Server{Handler: http.NotFoundHandler()}, ln, make(chan os.Signal), crashed); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
}

func TestCrashHookIsIdempotent(t *testing.T) {
	crash, crashed := newCrashHook()
	crash()
	crash()
	select {
	case <-crashed:
	default:
		t.Error("crash hook did not close the channel")
	}
}
