package scheduler

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/devskill-org/planetary-hours/almanac"
	"github.com/devskill-org/planetary-hours/astro"
)

// newYorkConfig returns a valid config for New York in a fixed zone
func newYorkConfig() *Config {
	config := DefaultConfig()
	config.Latitude = 40.71
	config.Longitude = -74.01
	config.Timezone = "UTC"
	config.DryRun = true
	config.ServerPort = 0
	return config
}

// fixedClock returns a scheduler whose clock is pinned to now
func fixedClock(config *Config, now time.Time) *HourScheduler {
	scheduler := NewHourScheduler(config, log.New(os.Stdout, "TEST ", log.LstdFlags))
	scheduler.nowFunc = func() time.Time { return now }
	return scheduler
}

func TestNewHourScheduler(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
		logger *log.Logger
	}{
		{
			name:   "valid parameters",
			config: newYorkConfig(),
			logger: log.New(os.Stdout, "TEST", log.LstdFlags),
		},
		{
			name:   "nil logger",
			config: newYorkConfig(),
			logger: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scheduler := NewHourScheduler(tt.config, tt.logger)

			if scheduler == nil {
				t.Fatal("NewHourScheduler returned nil")
			}

			status := scheduler.GetStatus()
			if status.IsRunning {
				t.Error("New scheduler should not be running")
			}
			if status.HasDay {
				t.Error("New scheduler should not have a day")
			}
			if scheduler.logger == nil {
				t.Error("Expected default logger when nil provided")
			}
		})
	}
}

func TestNewHourSchedulerWithServer(t *testing.T) {
	config := newYorkConfig()
	if s := NewHourSchedulerWithServer(config, nil); s.webServer != nil {
		t.Error("Expected no web server when server_port is 0")
	}

	config.ServerPort = 18080
	if s := NewHourSchedulerWithServer(config, nil); s.webServer == nil {
		t.Error("Expected web server when server_port is set")
	}
}

func TestRefresh(t *testing.T) {
	now := time.Date(2024, 6, 20, 16, 0, 0, 0, time.UTC) // 12:00 EDT
	scheduler := fixedClock(newYorkConfig(), now)
	if err := scheduler.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	day := scheduler.GetDay()
	if day == nil {
		t.Fatal("GetDay() = nil after Refresh")
	}
	if day.Ruler != astro.Jupiter {
		t.Errorf("Ruler = %s, want Jupiter", day.Ruler)
	}
	if day.Date.Day() != 20 {
		t.Errorf("Date = %v, want 20 June", day.Date)
	}

	hour, ok := scheduler.CurrentHour()
	if !ok {
		t.Fatal("CurrentHour() not found at noon")
	}
	if hour.Planet.Name != astro.Moon {
		t.Errorf("current planet = %s, want Moon", hour.Planet.Name)
	}

	status := scheduler.GetStatus()
	if !status.HasDay || status.LastRefresh == nil || status.Ruler != astro.Jupiter {
		t.Errorf("unexpected status %+v", status)
	}
}

func TestRefreshBeforeSunriseUsesPreviousDay(t *testing.T) {
	now := time.Date(2024, 6, 20, 8, 0, 0, 0, time.UTC) // 04:00 EDT
	scheduler := fixedClock(newYorkConfig(), now)
	if err := scheduler.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	day := scheduler.GetDay()
	// Wednesday 19 June is ruled by Mercury
	if day.Date.Day() != 19 || day.Ruler != astro.Mercury {
		t.Errorf("got %v ruled by %s, want 19 June ruled by Mercury", day.Date, day.Ruler)
	}
	if _, ok := scheduler.CurrentHour(); !ok {
		t.Error("Expected a current night hour before sunrise")
	}
}

func TestRefreshIgnoresMalformedNatal(t *testing.T) {
	scheduler := fixedClock(newYorkConfig(), time.Date(2024, 6, 20, 16, 0, 0, 0, time.UTC))
	scheduler.SetNatal(&almanac.NatalChart{BirthDate: "not a date"})

	if err := scheduler.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	for _, h := range scheduler.GetDay().Hours {
		if h.NatalResonant {
			t.Fatalf("hour %d resonant with malformed natal chart", h.Index)
		}
	}
}

func TestRefreshSunAlgorithms(t *testing.T) {
	for _, algorithm := range []string{"builtin", "suncalc", "go-sunrise"} {
		t.Run(algorithm, func(t *testing.T) {
			config := newYorkConfig()
			config.SunAlgorithm = algorithm
			scheduler := fixedClock(config, time.Date(2024, 6, 20, 16, 0, 0, 0, time.UTC))

			if err := scheduler.Refresh(context.Background()); err != nil {
				t.Fatalf("Refresh() error = %v", err)
			}
			if n := len(scheduler.GetDay().Hours); n != 24 {
				t.Errorf("got %d hours, want 24", n)
			}
		})
	}
}

func TestRefreshInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }},
		{"bad algorithm", func(c *Config) { c.SunAlgorithm = "sundial" }},
		{"bad latitude", func(c *Config) { c.Latitude = 123 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := newYorkConfig()
			tt.mutate(config)
			scheduler := fixedClock(config, time.Now())
			if err := scheduler.Refresh(context.Background()); err == nil {
				t.Error("Refresh() error = nil, want error")
			}
			if scheduler.GetDay() != nil {
				t.Error("Expected no day after failed refresh")
			}
		})
	}
}

func TestSchedulerRunningState(t *testing.T) {
	scheduler := NewHourScheduler(newYorkConfig(), nil)

	if scheduler.IsRunning() {
		t.Error("New scheduler should not be running")
	}

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- scheduler.Start(ctx, false)
	}()

	time.Sleep(100 * time.Millisecond)

	if !scheduler.IsRunning() {
		t.Error("Scheduler should be running after Start()")
	}
	if scheduler.GetDay() == nil {
		t.Error("Start() should compute the first day before scheduling refreshes")
	}

	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Expected context.Canceled error, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("Scheduler did not stop within timeout")
	}

	if scheduler.IsRunning() {
		t.Error("Scheduler should not be running after context cancellation")
	}
}

func TestSchedulerDoubleStart(t *testing.T) {
	scheduler := NewHourScheduler(newYorkConfig(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done1 := make(chan error, 1)
	go func() {
		done1 <- scheduler.Start(ctx, false)
	}()

	time.Sleep(100 * time.Millisecond)

	if err := scheduler.Start(ctx, false); err == nil {
		t.Error("Expected error when starting scheduler twice")
	}

	cancel()
	<-done1
}

func TestSchedulerStop(t *testing.T) {
	scheduler := NewHourScheduler(newYorkConfig(), nil)

	done := make(chan error, 1)
	go func() {
		done <- scheduler.Start(context.Background(), false)
	}()

	time.Sleep(100 * time.Millisecond)

	if !scheduler.IsRunning() {
		t.Error("Scheduler should be running")
	}

	scheduler.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected nil error after Stop(), got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("Scheduler did not stop within timeout")
	}

	if scheduler.IsRunning() {
		t.Error("Scheduler should not be running after Stop()")
	}
}

func TestSchedulerConcurrency(t *testing.T) {
	scheduler := NewHourScheduler(newYorkConfig(), nil)

	done := make(chan bool, 10)

	for range 5 {
		go func() {
			defer func() { done <- true }()
			for range 100 {
				_ = scheduler.GetDay()
				_ = scheduler.GetStatus()
				_, _ = scheduler.CurrentHour()
			}
		}()
	}

	for i := range 5 {
		go func(id int) {
			defer func() { done <- true }()
			for range 20 {
				config := newYorkConfig()
				config.Latitude = float64(id * 10)
				scheduler.SetConfig(config)
				_ = scheduler.Refresh(context.Background())
			}
		}(i)
	}

	for range 10 {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("Concurrent test timed out")
		}
	}
}

func TestSchedulerStopWithInFlightRequest(t *testing.T) {
	config := newYorkConfig()
	config.ServerPort = 18094
	scheduler := NewHourSchedulerWithServer(config, log.New(os.Stdout, "TEST ", log.LstdFlags))
	scheduler.isRunning = true

	// A handler that reads scheduler state after shutdown has begun
	entered := make(chan struct{})
	release := make(chan struct{})
	mux := scheduler.webServer.server.Handler.(*http.ServeMux)
	mux.HandleFunc("/test/slow", func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		writeJSON(w, http.StatusOK, scheduler.GetStatus())
	})

	if err := scheduler.webServer.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	base := fmt.Sprintf("http://127.0.0.1:%d", config.ServerPort)
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := http.Get(base + "/api/health")
		if err == nil {
			resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not come up: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	reqErr := make(chan error, 1)
	go func() {
		resp, err := http.Get(base + "/test/slow")
		if err == nil {
			resp.Body.Close()
		}
		reqErr <- err
	}()
	<-entered

	stopped := make(chan struct{})
	start := time.Now()
	go func() {
		scheduler.Stop()
		close(stopped)
	}()
	time.Sleep(100 * time.Millisecond)
	close(release)

	select {
	case <-stopped:
	case <-time.After(3 * time.Second):
		t.Fatal("Stop() blocked on an in-flight request")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Stop() took %v, want well under the shutdown timeout", elapsed)
	}
	if err := <-reqErr; err != nil {
		t.Errorf("in-flight request error = %v", err)
	}
	if scheduler.IsRunning() {
		t.Error("scheduler still running after Stop()")
	}
}

func TestRefreshDebugLogging(t *testing.T) {
	tests := []struct {
		level string
		want  bool
	}{
		{"debug", true},
		{"info", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			config := newYorkConfig()
			config.LogLevel = tt.level
			var buf bytes.Buffer
			scheduler := NewHourScheduler(config, log.New(&buf, "", 0))
			scheduler.nowFunc = func() time.Time { return time.Date(2024, 6, 20, 16, 0, 0, 0, time.UTC) }

			// The second refresh lands in the same hour
			for i := 0; i < 2; i++ {
				if err := scheduler.Refresh(context.Background()); err != nil {
					t.Fatalf("Refresh() error = %v", err)
				}
			}
			if got := strings.Contains(buf.String(), "[DEBUG]"); got != tt.want {
				t.Errorf("debug line logged = %v, want %v:\n%s", got, tt.want, buf.String())
			}
		})
	}
}

func BenchmarkSchedulerRefresh(b *testing.B) {
	scheduler := NewHourScheduler(newYorkConfig(), log.New(os.Stderr, "", 0))
	ctx := context.Background()

	for b.Loop() {
		_ = scheduler.Refresh(ctx)
	}
}

func TestGetInitialDelay(t *testing.T) {
	tests := []struct {
		name          string
		interval      time.Duration
		now           time.Time
		expectedDelay time.Duration
	}{
		{
			name:          "at start of hour with 15min interval",
			interval:      15 * time.Minute,
			now:           time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
			expectedDelay: 0,
		},
		{
			name:          "5 minutes into hour with 15min interval",
			interval:      15 * time.Minute,
			now:           time.Date(2024, 1, 15, 10, 5, 0, 0, time.UTC),
			expectedDelay: 10 * time.Minute,
		},
		{
			name:          "50 minutes into hour with 15min interval",
			interval:      15 * time.Minute,
			now:           time.Date(2024, 1, 15, 10, 50, 0, 0, time.UTC),
			expectedDelay: 10 * time.Minute,
		},
		{
			name:          "30 minutes into hour with 1hour interval",
			interval:      time.Hour,
			now:           time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
			expectedDelay: 30 * time.Minute,
		},
		{
			name:          "with seconds precision and 1min interval",
			interval:      time.Minute,
			now:           time.Date(2024, 1, 15, 10, 5, 30, 0, time.UTC),
			expectedDelay: 30 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scheduler := NewHourScheduler(newYorkConfig(), nil)

			actualDelay := scheduler.getInitialDelay(tt.now, tt.interval)

			if actualDelay != tt.expectedDelay {
				t.Errorf("Expected delay %v, got %v", tt.expectedDelay, actualDelay)
			}
			if actualDelay < 0 || actualDelay > tt.interval {
				t.Errorf("Expected delay within [0, %v], got %v", tt.interval, actualDelay)
			}
		})
	}
}
