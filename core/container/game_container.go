package container

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"judgement/common/cache"
	"judgement/common/config"
	jhttp "judgement/common/http"
	"judgement/common/log"
	"judgement/framework/conn"
	"judgement/framework/game"
	"judgement/framework/game/share"
	"judgement/game/interfaces/api"
)

const roomsCacheEntries = 16

// GameContainer owns every long-lived component of the server and the order
// they are torn down in.
type GameContainer struct {
	Config      *config.Config
	RoomManager *game.RoomManager
	Coordinator *game.Coordinator
	Conns       *conn.Manager
	HTTP        *jhttp.HttpServer
	Monitor     *game.Monitor
	RoomsCache  *cache.GeneralCache

	closed bool
	mu     sync.Mutex
}

func PacingFrom(cfg config.PacingConf) game.Pacing {
	return game.Pacing{
		TrickResult: cfg.TrickResult,
		ScoreRound:  cfg.ScoreRound,
		GameOver:    cfg.GameOver,
		NextTrick:   cfg.NextTrick,
	}
}

func ConnOptionsFrom(cfg *config.Config) (conn.Options, error) {
	throttle, err := share.Encode(&share.Error{Message: "Too many messages"})
	if err != nil {
		return conn.Options{}, err
	}
	return conn.Options{
		MaxMessageSize:    cfg.Server.MaxMessageSize,
		WriteWait:         cfg.Server.WriteWait,
		PongWait:          cfg.Server.PongWait,
		SendBuffer:        cfg.Server.SendBuffer,
		MessagesPerSecond: cfg.Limits.MessagesPerSecond,
		Burst:             cfg.Limits.Burst,
		ThrottleReply:     throttle,
	}, nil
}

// NewGameContainer builds the server: websocket manager <-> coordinator ->
// room manager, plus the HTTP routes and the monitor.
func NewGameContainer(cfg *config.Config) (*GameContainer, error) {
	opts, err := ConnOptionsFrom(cfg)
	if err != nil {
		return nil, fmt.Errorf("connection options: %w", err)
	}
	roomsCache, err := cache.NewGeneralCache(roomsCacheEntries, cfg.Rooms.ListCacheTTL)
	if err != nil {
		return nil, err
	}

	rm := game.NewRoomManager()
	conns := conn.NewManager(nil, opts)
	coordinator := game.NewCoordinator(rm, conns, PacingFrom(cfg.Pacing))
	conns.SetHandler(coordinator)

	srv := jhttp.NewHttpServer(jhttp.WithAddr(cfg.Server.Addr), jhttp.WithMode(cfg.Server.Mode))
	api.NewServer(rm, conns, roomsCache).Register(srv, cfg.Server.WsPath)

	log.Info("GameContainer ready: addr=%s ws=%s", cfg.Server.Addr, cfg.Server.WsPath)
	return &GameContainer{
		Config:      cfg,
		RoomManager: rm,
		Coordinator: coordinator,
		Conns:       conns,
		HTTP:        srv,
		Monitor:     game.NewMonitor(rm, cfg.Monitor.Interval, cfg.Monitor.AbandonedRoomTTL),
		RoomsCache:  roomsCache,
	}, nil
}

// Reload applies the settings that can change without a restart.
func (c *GameContainer) Reload(cfg *config.Config) {
	log.SetLevel(cfg.Log.Level)
	c.Coordinator.SetPacing(PacingFrom(cfg.Pacing))
	log.Info("GameContainer reloaded: log=%s pacing=%+v", cfg.Log.Level, cfg.Pacing)
}

// Close stops accepting traffic, drops connections and then stops the rooms.
// It is safe to call more than once.
func (c *GameContainer) Close(timeout time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	var errs []error
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := c.HTTP.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	c.Monitor.Stop()
	c.Conns.Shutdown()
	c.RoomManager.Shutdown()
	c.RoomsCache.Close()

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	log.Info("GameContainer closed")
	return nil
}
