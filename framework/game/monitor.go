package game

import (
	"context"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"

	"judgement/common/log"
	"judgement/framework/game/engines/judgement"
)

const (
	roomCapacity   = 1000
	playerCapacity = roomCapacity * judgement.MaxPlayers
)

// Monitor periodically logs load and sweeps rooms whose players have all been
// gone for longer than abandonedTTL.
type Monitor struct {
	roomManager    *RoomManager
	updateInterval time.Duration
	abandonedTTL   time.Duration
	proc           *process.Process
	stopCh         chan struct{}
}

func NewMonitor(roomManager *RoomManager, updateInterval, abandonedTTL time.Duration) *Monitor {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Warn("Monitor cannot inspect own process: %v", err)
	}
	return &Monitor{
		roomManager:    roomManager,
		updateInterval: updateInterval,
		abandonedTTL:   abandonedTTL,
		proc:           proc,
		stopCh:         make(chan struct{}),
	}
}

func (m *Monitor) Start(ctx context.Context) {
	ticker := time.NewTicker(m.updateInterval)
	defer ticker.Stop()

	m.reportLoad()
	for {
		select {
		case <-ctx.Done():
			log.Info("Monitor stopping: %v", ctx.Err())
			return
		case <-m.stopCh:
			log.Info("Monitor stopped")
			return
		case <-ticker.C:
			m.Sweep(ctx, time.Now())
			m.reportLoad()
		}
	}
}

func (m *Monitor) Stop() {
	close(m.stopCh)
}

// Sweep deletes running games where every seat went offline before now-ttl.
// It returns the number of rooms removed.
func (m *Monitor) Sweep(ctx context.Context, now time.Time) int {
	if m.abandonedTTL <= 0 {
		return 0
	}
	cutoff := now.Add(-m.abandonedTTL)
	removed := 0
	for _, room := range m.roomManager.GetAllRooms() {
		err := room.Do(ctx, func(ctx context.Context, g *judgement.Game) error {
			if g.Phase.InProgress() && g.AllDisconnectedSince(cutoff) {
				m.roomManager.DeleteRoom(room, g)
				removed++
			}
			return nil
		})
		if err != nil && ctx.Err() != nil {
			break
		}
	}
	if removed > 0 {
		log.Info("Monitor swept %d abandoned rooms", removed)
	}
	return removed
}

func (m *Monitor) reportLoad() {
	info := m.collectLoadInfo()
	log.Info("Monitor load=%.2f rooms=%d players=%d cpu=%.2f%% mem=%.2f%% rss=%dMiB",
		info.CalculateLoad(roomCapacity, playerCapacity),
		info.GameCount, info.PlayerCount, info.CPUUsage, info.MemUsage, info.RSSBytes>>20)
}

func (m *Monitor) collectLoadInfo() *LoadInfo {
	gameCount, playerCount := m.roomManager.GetStats()
	info := &LoadInfo{GameCount: gameCount, PlayerCount: playerCount}

	if vm, err := mem.VirtualMemory(); err == nil {
		info.MemUsage = vm.UsedPercent
	}
	if m.proc != nil {
		if pct, err := m.proc.CPUPercent(); err == nil {
			info.CPUUsage = pct
		}
		if mi, err := m.proc.MemoryInfo(); err == nil {
			info.RSSBytes = mi.RSS
		}
	}
	return info
}
