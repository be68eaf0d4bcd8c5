package game

import (
	"context"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"judgement/common/log"
	"judgement/framework/game/engines/judgement"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
)

// RoomManager is the registry of live rooms and the connection id -> room
// routing table. Its lock only guards the two maps; game state is reached
// through Room.Do.
type RoomManager struct {
	rooms      map[string]*Room  // code -> room
	playerRoom map[string]string // player id -> code
	mu         sync.RWMutex

	ctx      context.Context
	cancel   context.CancelFunc
	newCode  func() string
	gameRand func() *rand.Rand
}

type RoomManagerOption func(*RoomManager)

// WithCodeGenerator replaces the random room code source.
func WithCodeGenerator(gen func() string) RoomManagerOption {
	return func(rm *RoomManager) {
		rm.newCode = gen
	}
}

// WithGameRand supplies the shuffle source for each new game.
func WithGameRand(src func() *rand.Rand) RoomManagerOption {
	return func(rm *RoomManager) {
		rm.gameRand = src
	}
}

func NewRoomManager(opts ...RoomManagerOption) *RoomManager {
	ctx, cancel := context.WithCancel(context.Background())
	rm := &RoomManager{
		rooms:      make(map[string]*Room),
		playerRoom: make(map[string]string),
		ctx:        ctx,
		cancel:     cancel,
		newCode:    randomCode,
		gameRand:   func() *rand.Rand { return nil },
	}
	for _, opt := range opts {
		opt(rm)
	}
	return rm
}

func randomCode() string {
	var b strings.Builder
	b.Grow(codeLength)
	for range codeLength {
		b.WriteByte(codeAlphabet[rand.IntN(len(codeAlphabet))])
	}
	return b.String()
}

// generateCodeLocked draws codes until one is free. Caller holds rm.mu.
func (rm *RoomManager) generateCodeLocked() string {
	for {
		code := strings.ToUpper(rm.newCode())
		if _, taken := rm.rooms[code]; !taken {
			return code
		}
	}
}

// GenerateCode returns a code not used by any live room.
func (rm *RoomManager) GenerateCode() string {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.generateCodeLocked()
}

// CreateRoom makes a waiting room with playerID as its only member and host.
func (rm *RoomManager) CreateRoom(playerID, name string) (*Room, error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if code, exists := rm.playerRoom[playerID]; exists {
		log.Warn("RoomManager player %s already in room %s", playerID, code)
		return nil, ErrAlreadyInRoom
	}

	code := rm.generateCodeLocked()
	g := judgement.NewGame(code, rm.gameRand())
	g.AddPlayer(playerID, name)

	room := newRoom(rm.ctx, g)
	rm.rooms[code] = room
	rm.playerRoom[playerID] = code

	log.Info("RoomManager created room %s for %s (%s)", code, name, playerID)
	return room, nil
}

// GetRoom looks a room up by code, case-insensitively.
func (rm *RoomManager) GetRoom(code string) (*Room, bool) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	room, exists := rm.rooms[strings.ToUpper(strings.TrimSpace(code))]
	return room, exists
}

// GetPlayerRoom resolves the room a connection id is routed to.
func (rm *RoomManager) GetPlayerRoom(playerID string) (*Room, bool) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	code, exists := rm.playerRoom[playerID]
	if !exists {
		return nil, false
	}
	room, exists := rm.rooms[code]
	return room, exists
}

type JoinResult struct {
	// Reconnected is set when an existing seat was rebound to the caller.
	Reconnected bool
	// PreviousID is the id the seat had before rebinding.
	PreviousID string
	// AlreadyMember is set for a repeated join by the same id.
	AlreadyMember bool
}

// Join seats playerID in room, or rebinds a seat with the same name when the
// game is already running. Must be called from a job on room.
func (rm *RoomManager) Join(room *Room, g *judgement.Game, playerID, name string) (JoinResult, error) {
	if g.PlayerByID(playerID) != nil {
		return JoinResult{AlreadyMember: true}, nil
	}

	if g.Phase.InProgress() {
		seat := g.PlayerByName(name)
		if seat == nil {
			return JoinResult{}, ErrGameInProgress
		}
		oldID := seat.ID
		if !g.RebindPlayer(oldID, playerID) {
			return JoinResult{}, ErrGameInProgress
		}
		seat.Connected = true
		seat.DisconnectedAt = time.Time{}

		rm.mu.Lock()
		if rm.playerRoom[oldID] == room.Code {
			delete(rm.playerRoom, oldID)
		}
		rm.playerRoom[playerID] = room.Code
		rm.mu.Unlock()

		log.Info("Room[%s] %s reconnected as %s (was %s)", room.Code, name, playerID, oldID)
		return JoinResult{Reconnected: true, PreviousID: oldID}, nil
	}

	if len(g.Players) >= judgement.MaxPlayers {
		return JoinResult{}, ErrRoomFull
	}
	if g.PlayerByName(name) != nil {
		return JoinResult{}, duplicateName(name)
	}

	g.AddPlayer(playerID, name)
	rm.mu.Lock()
	rm.playerRoom[playerID] = room.Code
	rm.mu.Unlock()

	log.Info("Room[%s] %s joined as %s, %d seated", room.Code, name, playerID, len(g.Players))
	return JoinResult{}, nil
}

// RemovePlayer takes playerID out of the game and the routing table. The
// room is deleted once empty; otherwise the host moves to the first seat.
// Must be called from a job on room. Reports whether the room was deleted.
func (rm *RoomManager) RemovePlayer(room *Room, g *judgement.Game, playerID string) bool {
	g.RemovePlayer(playerID)
	rm.Detach(playerID)

	if len(g.Players) == 0 {
		rm.DeleteRoom(room, g)
		return true
	}
	log.Info("Room[%s] removed %s, host now %s", room.Code, playerID, g.HostID)
	return false
}

// Detach drops the routing entry for playerID and leaves the seat untouched.
func (rm *RoomManager) Detach(playerID string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	delete(rm.playerRoom, playerID)
}

// DeleteRoom unregisters room and every id routed to it, then stops it.
// Must be called from a job on room.
func (rm *RoomManager) DeleteRoom(room *Room, g *judgement.Game) {
	rm.mu.Lock()
	for _, p := range g.Players {
		if rm.playerRoom[p.ID] == room.Code {
			delete(rm.playerRoom, p.ID)
		}
	}
	if rm.rooms[room.Code] == room {
		delete(rm.rooms, room.Code)
	}
	rm.mu.Unlock()

	room.Close()
	log.Info("RoomManager deleted room %s", room.Code)
}

// ListRooms returns summaries of every live room ordered by code.
func (rm *RoomManager) ListRooms() []RoomSummary {
	rooms := rm.GetAllRooms()
	out := make([]RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, room.Summary())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RoomCode < out[j].RoomCode
	})
	return out
}

// GetAllRooms returns a snapshot of the live rooms.
func (rm *RoomManager) GetAllRooms() []*Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	rooms := make([]*Room, 0, len(rm.rooms))
	for _, room := range rm.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

// GetStats reports live rooms and connected, routed players.
func (rm *RoomManager) GetStats() (gameCount int, playerCount int) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms), len(rm.playerRoom)
}

// Shutdown stops every room goroutine.
func (rm *RoomManager) Shutdown() {
	rm.cancel()
	for _, room := range rm.GetAllRooms() {
		<-room.Done()
	}
	log.Info("RoomManager stopped all rooms")
}
