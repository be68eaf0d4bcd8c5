package api

import (
	"net/http"

	"judgement/common/cache"
	jhttp "judgement/common/http"
	"judgement/framework/conn"
	"judgement/framework/game"
)

const roomsCacheKey = "rooms"

// Server exposes the lobby over HTTP next to the websocket endpoint.
type Server struct {
	rooms *game.RoomManager
	conns *conn.Manager
	cache *cache.GeneralCache
}

func NewServer(rooms *game.RoomManager, conns *conn.Manager, listCache *cache.GeneralCache) *Server {
	return &Server{rooms: rooms, conns: conns, cache: listCache}
}

// Register mounts /healthz, /rooms and the websocket upgrade on wsPath.
func (s *Server) Register(srv *jhttp.HttpServer, wsPath string) {
	srv.Use(jhttp.RequestIDMiddleware(), jhttp.CorsMiddleware(), jhttp.LoggerMiddleware())
	srv.GET("/healthz", s.health)
	srv.GET("/rooms", s.listRooms)
	srv.Handle(http.MethodGet, wsPath, s.conns)
}

type healthResponse struct {
	Status      string `json:"status"`
	Rooms       int    `json:"rooms"`
	Players     int    `json:"players"`
	Connections int    `json:"connections"`
}

func (s *Server) health(c *jhttp.Context) error {
	rooms, players := s.rooms.GetStats()
	c.Success(healthResponse{
		Status:      "ok",
		Rooms:       rooms,
		Players:     players,
		Connections: s.conns.Count(),
	})
	return nil
}

func (s *Server) listRooms(c *jhttp.Context) error {
	if s.cache == nil {
		c.Success(s.rooms.ListRooms())
		return nil
	}
	rooms, err := s.cache.Fetch(roomsCacheKey, func() (any, error) {
		return s.rooms.ListRooms(), nil
	})
	if err != nil {
		return err
	}
	c.Success(rooms)
	return nil
}
