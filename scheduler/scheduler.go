// Package scheduler keeps the planetary day for the configured location up
// to date, persists computed schedules and serves them over HTTP and
// WebSocket.
package scheduler

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/devskill-org/planetary-hours/almanac"
	"github.com/devskill-org/planetary-hours/sun"
	_ "github.com/lib/pq"
)

// PeriodicTask represents a task that runs periodically with an optional initial delay
type PeriodicTask struct {
	name         string
	initialDelay time.Duration
	interval     time.Duration
	runFunc      func()
}

// run executes the task until ctx is cancelled or stopChan is closed
func (pt *PeriodicTask) run(ctx context.Context, stopChan <-chan struct{}, logger *log.Logger) {
	if pt.initialDelay > 0 {
		logger.Printf("[%s] Waiting for initial delay: %v", pt.name, pt.initialDelay)
		select {
		case <-time.After(pt.initialDelay):
			pt.runFunc()
		case <-ctx.Done():
			logger.Printf("[%s] Stopped during initial delay due to context cancellation", pt.name)
			return
		case <-stopChan:
			logger.Printf("[%s] Stopped during initial delay due to stop signal", pt.name)
			return
		}
	} else {
		pt.runFunc()
	}

	ticker := time.NewTicker(pt.interval)
	defer ticker.Stop()

	logger.Printf("[%s] Started with interval: %v", pt.name, pt.interval)

	for {
		select {
		case <-ticker.C:
			pt.runFunc()
		case <-ctx.Done():
			logger.Printf("[%s] Stopped due to context cancellation", pt.name)
			return
		case <-stopChan:
			logger.Printf("[%s] Stopped due to stop signal", pt.name)
			return
		}
	}
}

// HourScheduler recomputes the planetary day on a fixed interval and keeps
// the latest result for readers.
type HourScheduler struct {
	// Configuration
	config *Config
	natal  *almanac.NatalChart

	// State
	day         *almanac.Day
	lastRefresh time.Time
	lastHour    int
	isRunning   bool
	stopChan    chan struct{}
	mu          sync.RWMutex

	// Web server
	webServer *WebServer

	// Database connection
	db *sql.DB

	// Logging
	logger *log.Logger

	// Test hook for the reference clock
	nowFunc func() time.Time
}

// NewHourScheduler creates a new scheduler instance
func NewHourScheduler(config *Config, logger *log.Logger) *HourScheduler {
	if logger == nil {
		logger = log.Default()
	}

	return &HourScheduler{
		config:   config,
		stopChan: make(chan struct{}),
		lastHour: -1,
		logger:   logger,
		nowFunc:  time.Now,
	}
}

// NewHourSchedulerWithServer creates a new scheduler instance with the HTTP API
func NewHourSchedulerWithServer(config *Config, logger *log.Logger) *HourScheduler {
	scheduler := NewHourScheduler(config, logger)
	scheduler.webServer = NewWebServer(scheduler, config.ServerPort)
	return scheduler
}

// SetConfig replaces the configuration used by the next refresh
func (s *HourScheduler) SetConfig(config *Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = config
}

// GetConfig returns the current configuration
func (s *HourScheduler) GetConfig() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// SetNatal sets the birth data used for natal resonance. nil disables it.
func (s *HourScheduler) SetNatal(natal *almanac.NatalChart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.natal = natal
}

// GetDay returns the latest computed planetary day, or nil before the first refresh
func (s *HourScheduler) GetDay() *almanac.Day {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.day
}

// CurrentHour returns the hour of the latest day containing the current instant
func (s *HourScheduler) CurrentHour() (almanac.HourAnnotation, bool) {
	day := s.GetDay()
	if day == nil {
		return almanac.HourAnnotation{}, false
	}
	now := s.nowFunc()
	for _, h := range day.Hours {
		if h.Contains(now) {
			return h, true
		}
	}
	return almanac.HourAnnotation{}, false
}

// Refresh recomputes the planetary day containing the current instant. A
// malformed natal chart is logged and the day is computed without it.
func (s *HourScheduler) Refresh(ctx context.Context) error {
	s.mu.RLock()
	config := s.config
	natal := s.natal
	s.mu.RUnlock()

	loc, err := config.TimeLocation()
	if err != nil {
		return err
	}
	provider, err := sun.ForAlgorithm(config.SunAlgorithm)
	if err != nil {
		return err
	}

	now := s.nowFunc()
	coord := config.Coordinate()
	req := almanac.Request{
		Date:       almanac.PlanetaryDate(now, coord, loc, provider.SunTimes),
		Coordinate: coord,
		Now:        now,
		Natal:      natal,
		Location:   loc,
		SunTimes:   provider.SunTimes,
	}

	day, err := almanac.Annotate(req)
	if err != nil && natal != nil {
		s.logger.Printf("[SCHEDULER] Ignoring natal chart: %v", err)
		req.Natal = nil
		day, err = almanac.Annotate(req)
	}
	if err != nil {
		return fmt.Errorf("failed to compute planetary day: %w", err)
	}

	s.mu.Lock()
	changed := s.day == nil || !s.day.Date.Equal(day.Date)
	hourChanged := false
	if day.Current != nil && day.Current.Index != s.lastHour {
		hourChanged = true
		s.lastHour = day.Current.Index
	}
	s.day = day
	s.lastRefresh = now
	db := s.db
	s.mu.Unlock()

	if changed {
		s.logger.Printf("[SCHEDULER] Planetary day %s ruled by %s (sunrise %s, sunset %s, %s)",
			day.Date.Format("2006-01-02"), day.Ruler,
			day.Sunrise.In(loc).Format("15:04"), day.Sunset.In(loc).Format("15:04"), provider.Name())

		if config.DryRun {
			s.logger.Printf("[SCHEDULER] [DRY-RUN] Would save %d hours to database", len(day.Hours))
		} else if db != nil {
			if err := s.saveDay(ctx, day); err != nil {
				s.logger.Printf("[SCHEDULER] Failed to save planetary day: %v", err)
			}
		}
	}

	if hourChanged {
		cur := day.Current
		s.logger.Printf("[SCHEDULER] Hour %d of %s in %s (%s, strength %d)",
			cur.Index+1, cur.Planet.Name, cur.Zodiac.Name, cur.Dignity, cur.Strength)
		s.webServer.Notify()
	} else if config.debugEnabled() {
		s.logger.Printf("[SCHEDULER] [DEBUG] Refreshed %s at %s, hour unchanged",
			day.Date.Format("2006-01-02"), now.In(loc).Format("15:04:05"))
	}

	return nil
}

// getInitialDelay returns the time until the next multiple of delayInterval
// counted from the top of the current hour
func (s *HourScheduler) getInitialDelay(now time.Time, delayInterval time.Duration) time.Duration {
	top := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location())
	delay := now.Sub(top)
	for delay > 0 {
		delay = delay - delayInterval
	}
	return -delay
}

// Start computes the first day, starts the web server if configured and runs
// the refresh task until ctx is cancelled or Stop is called. With serverOnly
// set it returns right after the server has started.
func (s *HourScheduler) Start(ctx context.Context, serverOnly bool) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("scheduler is already running")
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	config := s.GetConfig()

	if config.DryRun {
		s.logger.Printf("[SCHEDULER] DRY-RUN MODE ENABLED: schedules will not be persisted")
	} else if config.PostgresConnString != "" {
		db, err := sql.Open("postgres", config.PostgresConnString)
		if err != nil {
			s.logger.Printf("[SCHEDULER] Failed to connect to database: %v", err)
		} else {
			s.mu.Lock()
			s.db = db
			s.mu.Unlock()
		}
	}

	if err := s.Refresh(ctx); err != nil {
		s.logger.Printf("[SCHEDULER] Initial refresh failed: %v", err)
	}

	if s.webServer != nil {
		err := s.webServer.Start()
		if err != nil {
			s.logger.Printf("[SCHEDULER] Failed to start web server: %v", err)
		} else {
			s.logger.Printf("[SCHEDULER] Web server started on port %d", s.webServer.port)
		}
		if serverOnly {
			return err
		}
	}

	tasks := []PeriodicTask{
		{
			name:         "Refresh",
			initialDelay: s.getInitialDelay(s.nowFunc(), config.RefreshInterval),
			interval:     config.RefreshInterval,
			runFunc: func() {
				if err := s.Refresh(ctx); err != nil {
					s.logger.Printf("[SCHEDULER] Refresh failed: %v", err)
				}
			},
		},
	}

	var wg sync.WaitGroup
	for _, task := range tasks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			task.run(ctx, s.stopChan, s.logger)
		}()
	}

	wg.Wait()

	s.logger.Printf("[SCHEDULER] All periodic tasks stopped")
	s.stop()
	return ctx.Err()
}

// Stop gracefully stops the scheduler
func (s *HourScheduler) Stop() {
	s.stop()
}

func (s *HourScheduler) stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}

	s.isRunning = false

	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}

	db := s.db
	s.db = nil
	s.mu.Unlock()

	// Shutdown waits for in-flight handlers, which take s.mu

	if s.webServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.webServer.Stop(ctx); err != nil {
			s.logger.Printf("[SCHEDULER] Error stopping web server: %v", err)
		}
	}

	if db != nil {
		if err := db.Close(); err != nil {
			s.logger.Printf("[SCHEDULER] Error closing database: %v", err)
		}
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *HourScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetStatus returns the current status of the scheduler
func (s *HourScheduler) GetStatus() SchedulerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := SchedulerStatus{
		IsRunning: s.isRunning,
		HasDay:    s.day != nil,
	}
	if !s.lastRefresh.IsZero() {
		t := s.lastRefresh
		status.LastRefresh = &t
	}
	if s.day != nil {
		status.Ruler = s.day.Ruler
	}
	return status
}

// SchedulerStatus represents the current status of the scheduler
type SchedulerStatus struct {
	IsRunning   bool       `json:"is_running"`
	HasDay      bool       `json:"has_day"`
	LastRefresh *time.Time `json:"last_refresh,omitempty"`
	Ruler       string     `json:"ruler,omitempty"`
}
