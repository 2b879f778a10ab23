package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/cryptofolio/internal/database"
)

// SystemHandlers serves liveness and system resource endpoints.
type SystemHandlers struct {
	cacheDB   *database.DB
	startedAt time.Time
	log       zerolog.Logger
}

// NewSystemHandlers creates system handlers. cacheDB may be nil when the
// cache is disabled.
func NewSystemHandlers(cacheDB *database.DB, log zerolog.Logger) *SystemHandlers {
	return &SystemHandlers{
		cacheDB:   cacheDB,
		startedAt: time.Now(),
		log:       log.With().Str("handler", "system").Logger(),
	}
}

// HandleHealth is a minimal liveness probe.
// GET /health
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// systemStatus is the response of GET /api/system/status.
type systemStatus struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	CacheHealthy  bool    `json:"cache_healthy"`
}

// HandleSystemStatus reports process uptime, host resource usage and
// cache database health.
// GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPct, memPct := h.getSystemStats()

	cacheHealthy := h.cacheDB == nil
	if h.cacheDB != nil {
		cacheHealthy = h.cacheDB.QuickCheck(r.Context()) == nil
	}

	status := systemStatus{
		Status:        "ok",
		UptimeSeconds: time.Since(h.startedAt).Seconds(),
		CPUPercent:    cpuPct,
		MemoryPercent: memPct,
		CacheHealthy:  cacheHealthy,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(status); err != nil {
		h.log.Error().Err(err).Msg("failed to encode system status")
	}
}

// getSystemStats calculates CPU and RAM usage percentages.
// Uses a short sampling interval to keep the endpoint responsive.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}
