package server

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/denysvitali/postlog-dashboard/internal/models"
)

// handleServerInfo reports uptime, idle time and resource usage of the process
func (s *Server) handleServerInfo(c *gin.Context) {
	s.mu.RLock()
	lastSeen := s.lastSeen
	s.mu.RUnlock()

	now := time.Now()
	c.JSON(http.StatusOK, models.ServerInfoResponse{
		Uptime:       now.Sub(s.startTime).Seconds(),
		IdleTime:     now.Sub(lastSeen).Seconds(),
		OpenBrowsers: s.store.Len(),
		Resources:    s.processResources(),
	})
}

// processResources returns resource statistics using gopsutil. Failed probes
// are logged and reported as zero.
func (s *Server) processResources() models.ProcessResources {
	resources := models.ProcessResources{
		CPUCount:   runtime.NumCPU(),
		Goroutines: runtime.NumGoroutine(),
	}

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		s.logger.Warnf("Failed to get process info: %v", err)
		return resources
	}

	if cpuPercent, err := proc.CPUPercent(); err != nil {
		s.logger.Warnf("Failed to get CPU percent: %v", err)
	} else {
		resources.CPUPercent = cpuPercent
	}

	if memInfo, err := proc.MemoryInfo(); err != nil {
		s.logger.Warnf("Failed to get memory info: %v", err)
	} else {
		resources.MemoryRSS = memInfo.RSS
	}

	if memPercent, err := proc.MemoryPercent(); err != nil {
		s.logger.Warnf("Failed to get memory percent: %v", err)
	} else {
		resources.MemoryPercent = memPercent
	}

	return resources
}
