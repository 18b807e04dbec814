package monitor

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustline/arena/internal/influx"
	"github.com/dustline/arena/internal/logging"
)

// DefaultInterval is how often the status file is rewritten.
const DefaultInterval = time.Second

// Status is a point-in-time view of the running client.
type Status struct {
	Time        time.Time `json:"time"`
	Match       string    `json:"match"`
	MatchStatus string    `json:"matchStatus"`
	Round       int       `json:"round"`
	RoundLeftMs int64     `json:"roundLeftMs"`

	PlayerID string  `json:"playerId"`
	Name     string  `json:"name"`
	Alive    bool    `json:"alive"`
	Health   float64 `json:"health"`
	Armor    float64 `json:"armor"`
	Wave     int     `json:"wave"`
	Weapon   string  `json:"weapon"`
	Ammo     int     `json:"ammo"`
	Reserve  int     `json:"reserve"`

	Peers    int `json:"peers"`
	Pending  int `json:"pending"`
	Received int `json:"received"`
	Dropped  int `json:"dropped"`
	Recorded int `json:"recorded"`

	Dispatching  int `json:"dispatching"`
	StorageQueue int `json:"storageQueue"`
}

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	LogManager *logging.SlogManager
	Influx     *influx.Manager // optional
	StatusFile string          // empty disables the file
	Interval   time.Duration
}

// Service manages status monitoring. The tick loop publishes with Update;
// a background goroutine writes the latest status out.
type Service struct {
	deps      Dependencies
	latest    atomic.Pointer[Status]
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	done      chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	if deps.Interval <= 0 {
		deps.Interval = DefaultInterval
	}
	return &Service{
		deps:     deps,
		stopChan: make(chan struct{}),
	}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Update replaces the status to report. Safe for concurrent use.
func (s *Service) Update(st Status) {
	s.latest.Store(&st)
}

// Latest returns the last published status, false before the first Update.
func (s *Service) Latest() (Status, bool) {
	st := s.latest.Load()
	if st == nil {
		return Status{}, false
	}
	return *st, true
}

// GetProgramStatus renders the latest status as indented JSON lines.
func (s *Service) GetProgramStatus() (output []string, st Status, ok bool) {
	st, ok = s.Latest()
	if !ok {
		return nil, st, false
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		data = []byte(fmt.Sprintf(`{"error": "%s"}`, err))
	}
	output = append(output, string(data))
	return output, st, true
}

// Start starts the status monitor goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	s.mu.Unlock()

	var statusFile *os.File
	if s.deps.StatusFile != "" {
		var err error
		statusFile, err = os.Create(s.deps.StatusFile)
		if err != nil {
			s.deps.LogManager.Logger().Error("Error creating status file", "error", err)
		}
	}

	go func() {
		defer func() {
			if statusFile != nil {
				statusFile.Close()
			}
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
			close(s.done)
		}()

		logger := s.deps.LogManager.Logger()
		logger.Debug("Starting status monitor goroutine", "interval", s.deps.Interval)

		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopChan:
				s.report(statusFile)
				return
			case <-ticker.C:
				s.report(statusFile)
			}
		}
	}()

	return nil
}

func (s *Service) report(statusFile *os.File) {
	lines, st, ok := s.GetProgramStatus()
	if !ok {
		return
	}

	if statusFile != nil {
		statusFile.Truncate(0)
		statusFile.Seek(0, 0)
		for _, line := range lines {
			statusFile.WriteString(line + "\n")
		}
	}

	if s.deps.Influx != nil {
		err := s.deps.Influx.WritePoint(influx.StatusPoint(st.Match, st.PlayerID, map[string]interface{}{
			"peers":        st.Peers,
			"pending":      st.Pending,
			"received":     st.Received,
			"dropped":      st.Dropped,
			"recorded":     st.Recorded,
			"dispatching":  st.Dispatching,
			"storageQueue": st.StorageQueue,
		}, st.Time))
		if err != nil {
			s.deps.LogManager.Logger().Debug("Error writing status point", "error", err)
		}
	}
}

// Stop stops the status monitor and waits for the final report.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	close(s.stopChan)
	done := s.done
	s.mu.Unlock()
	<-done
}
