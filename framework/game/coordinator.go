package game

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"judgement/common/log"
	"judgement/framework/game/engines/judgement"
	"judgement/framework/game/share"
)

// Transport delivers frames to a single connection. Send must not block;
// failures are best-effort and get dropped.
type Transport interface {
	Send(connID string, buf []byte) error
	Close(connID string)
}

// Pacing holds the pauses inserted between choreography steps.
type Pacing struct {
	TrickResult time.Duration // last card of a trick -> trick_result
	ScoreRound  time.Duration // trick_result of the last trick -> round_result
	GameOver    time.Duration // final round_result -> game_over
	NextTrick   time.Duration // trick_result -> next play_turn
}

// DefaultPacing gives players a moment to see each resolved trick.
var DefaultPacing = Pacing{
	TrickResult: time.Second,
	ScoreRound:  time.Second,
	GameOver:    1500 * time.Millisecond,
	NextTrick:   500 * time.Millisecond,
}

type HandlerFunc func(ctx context.Context, connID string, req share.Request) error

// Coordinator maps connections to seats, routes inbound messages to the
// rules engine and broadcasts the results.
type Coordinator struct {
	RoomManager *RoomManager
	transport   Transport
	pacing      atomic.Pointer[Pacing]
	handlers    map[share.MessageType]HandlerFunc
}

func NewCoordinator(rm *RoomManager, transport Transport, pacing Pacing) *Coordinator {
	c := &Coordinator{
		RoomManager: rm,
		transport:   transport,
	}
	c.SetPacing(pacing)
	c.handlers = map[share.MessageType]HandlerFunc{
		share.TypeCreateRoom: c.handleCreateRoom,
		share.TypeJoinRoom:   c.handleJoinRoom,
		share.TypeStartGame:  c.handleStartGame,
		share.TypePlaceBid:   c.handlePlaceBid,
		share.TypePlayCard:   c.handlePlayCard,
		share.TypeNextRound:  c.handleNextRound,
	}
	return c
}

// SetPacing swaps the pauses used by choreography started after the call.
func (c *Coordinator) SetPacing(p Pacing) {
	c.pacing.Store(&p)
}

func (c *Coordinator) Pacing() Pacing {
	return *c.pacing.Load()
}

func (c *Coordinator) OnConnect(ctx context.Context, connID string) {
	c.send(connID, &share.Connected{PlayerID: connID})
}

func (c *Coordinator) OnMessage(ctx context.Context, connID string, body []byte) {
	req, err := share.DecodeRequest(body)
	if err != nil {
		log.Debug("Coordinator[%s] bad message: %v", connID, err)
		c.sendError(connID, err)
		return
	}
	handler, ok := c.handlers[req.GetType()]
	if !ok {
		c.sendError(connID, &share.ProtocolError{Kind: share.ErrUnknownMessageType, Message: "Unknown message type: " + string(req.GetType())})
		return
	}
	if err := handler(ctx, connID, req); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// connection or server is going away, nobody to tell
			log.Debug("Coordinator[%s] %s abandoned: %v", connID, req.GetType(), err)
			return
		}
		log.Debug("Coordinator[%s] %s rejected: %v", connID, req.GetType(), err)
		c.sendError(connID, err)
	}
}

// OnDisconnect frees the seat of a waiting room, or keeps the seat of a
// running game so the player can rejoin by name.
func (c *Coordinator) OnDisconnect(ctx context.Context, connID string) {
	room, ok := c.RoomManager.GetPlayerRoom(connID)
	if !ok {
		return
	}
	err := room.Do(context.Background(), func(ctx context.Context, g *judgement.Game) error {
		player := g.PlayerByID(connID)
		if player == nil {
			c.RoomManager.Detach(connID)
			return nil
		}
		if !g.Phase.InProgress() {
			if deleted := c.RoomManager.RemovePlayer(room, g, connID); deleted {
				return nil
			}
			c.broadcast(g, &share.PlayerLeft{
				PlayerID:  connID,
				Players:   g.PlayerViews(),
				HostID:    g.HostID,
				NewHostID: g.HostID,
			})
			return nil
		}

		player.Connected = false
		player.DisconnectedAt = time.Now()
		c.RoomManager.Detach(connID)
		log.Info("Room[%s] %s disconnected mid-game, seat kept", room.Code, player.Name)
		c.broadcast(g, &share.PlayerDisconnected{
			PlayerID:   connID,
			PlayerName: player.Name,
			Game:       g.View(),
		})
		return nil
	})
	if err != nil && !errors.Is(err, ErrRoomClosed) {
		log.Warn("Coordinator[%s] disconnect cleanup failed: %v", connID, err)
	}
}

func (c *Coordinator) roomOf(connID string) (*Room, error) {
	room, ok := c.RoomManager.GetPlayerRoom(connID)
	if !ok {
		return nil, ErrNotInRoom
	}
	return room, nil
}

// inRoom runs fn on the caller's room.
func (c *Coordinator) inRoom(ctx context.Context, connID string, fn JobFunc) error {
	room, err := c.roomOf(connID)
	if err != nil {
		return err
	}
	err = room.Do(ctx, fn)
	if errors.Is(err, ErrRoomClosed) {
		return ErrNotInRoom
	}
	return err
}

func (c *Coordinator) handleCreateRoom(ctx context.Context, connID string, req share.Request) error {
	r := req.(*share.CreateRoomRequest)
	room, err := c.RoomManager.CreateRoom(connID, r.PlayerName)
	if err != nil {
		return err
	}
	return room.Do(ctx, func(ctx context.Context, g *judgement.Game) error {
		c.send(connID, &share.RoomCreated{
			RoomCode: g.RoomCode,
			Game:     g.View(),
			Players:  g.PlayerViews(),
		})
		return nil
	})
}

func (c *Coordinator) handleJoinRoom(ctx context.Context, connID string, req share.Request) error {
	r := req.(*share.JoinRoomRequest)
	if current, ok := c.RoomManager.GetPlayerRoom(connID); ok && current.Code != r.RoomCode {
		return ErrAlreadyInRoom
	}
	room, ok := c.RoomManager.GetRoom(r.RoomCode)
	if !ok {
		return ErrRoomNotFound
	}
	err := room.Do(ctx, func(ctx context.Context, g *judgement.Game) error {
		res, err := c.RoomManager.Join(room, g, connID, r.PlayerName)
		if err != nil {
			return err
		}
		if res.Reconnected && res.PreviousID != "" {
			c.transport.Close(res.PreviousID)
		}

		c.send(connID, &share.RoomJoined{
			RoomCode:    g.RoomCode,
			Game:        g.View(),
			Players:     g.PlayerViews(),
			Reconnected: res.Reconnected,
		})
		if res.AlreadyMember {
			return nil
		}
		c.broadcast(g, &share.PlayerJoined{
			PlayerID: connID,
			Players:  g.PlayerViews(),
			HostID:   g.HostID,
		}, connID)

		if g.Phase.InProgress() {
			c.resync(connID, g)
		}
		return nil
	})
	if errors.Is(err, ErrRoomClosed) {
		return ErrRoomNotFound
	}
	return err
}

func (c *Coordinator) handleStartGame(ctx context.Context, connID string, _ share.Request) error {
	return c.inRoom(ctx, connID, func(ctx context.Context, g *judgement.Game) error {
		if g.HostID != connID {
			return notHost("start the game")
		}
		if g.Phase.InProgress() {
			return ErrGameInProgress
		}
		if err := g.Start(); err != nil {
			return err
		}
		log.Info("Room[%s] game started with %d players, %d rounds", g.RoomCode, len(g.Players), g.TotalRounds())
		c.broadcast(g, &share.GameStarted{RoomCode: g.RoomCode})
		c.announceRound(g)
		return nil
	})
}

func (c *Coordinator) handlePlaceBid(ctx context.Context, connID string, req share.Request) error {
	r := req.(*share.PlaceBidRequest)
	return c.inRoom(ctx, connID, func(ctx context.Context, g *judgement.Game) error {
		biddingDone, err := g.PlaceBid(connID, r.Bid)
		if err != nil {
			return err
		}
		player := g.PlayerByID(connID)
		c.broadcast(g, &share.BidPlaced{
			PlayerID:   connID,
			PlayerName: player.Name,
			Bid:        r.Bid,
			Bids:       g.Round.View().Bids,
		})
		if biddingDone {
			c.announcePlayTurn(g)
			return nil
		}
		c.announceBidTurn(g)
		return nil
	})
}

func (c *Coordinator) handlePlayCard(ctx context.Context, connID string, req share.Request) error {
	r := req.(*share.PlayCardRequest)
	return c.inRoom(ctx, connID, func(ctx context.Context, g *judgement.Game) error {
		outcome, err := g.PlayCard(connID, r.Card)
		if err != nil {
			return err
		}
		player := g.PlayerByID(connID)
		c.broadcast(g, &share.CardPlayed{
			PlayerID:   connID,
			PlayerName: player.Name,
			Card:       r.Card.View(),
			Trick:      outcome.Trick.View(),
			Game:       g.View(),
		})
		if outcome.Result == nil {
			c.announcePlayTurn(g)
			return nil
		}
		c.finishTrick(ctx, g, outcome.Result)
		return nil
	})
}

// finishTrick sequences trick_result, then either the next turn or the end
// of round and possibly the end of game, with the configured pauses.
func (c *Coordinator) finishTrick(ctx context.Context, g *judgement.Game, res *judgement.TrickResult) {
	pacing := c.Pacing()
	pause(ctx, pacing.TrickResult)

	winner := g.PlayerByID(res.WinnerID)
	c.broadcast(g, &share.TrickResult{
		WinnerID:    res.WinnerID,
		WinnerName:  winner.Name,
		WinningCard: res.WinningCard.View(),
		Trick:       res.Trick.View(),
		Game:        g.View(),
	})

	if !res.RoundOver {
		pause(ctx, pacing.NextTrick)
		c.announcePlayTurn(g)
		return
	}

	pause(ctx, pacing.ScoreRound)
	results, gameOver, err := g.FinishRound()
	if err != nil {
		log.Error("Room[%s] finish round: %v", g.RoomCode, err)
		return
	}
	c.broadcast(g, &share.RoundResult{
		Results:       results,
		ScoresHistory: g.ScoresHistory,
		Game:          g.View(),
	})
	if !gameOver {
		return
	}

	pause(ctx, pacing.GameOver)
	final := g.Results()
	if final.Winner != nil {
		log.Info("Room[%s] game over, %s wins with %d", g.RoomCode, final.Winner.PlayerName, final.Winner.TotalScore)
	}
	c.broadcast(g, &share.GameOver{Results: final, Game: g.View()})
}

func (c *Coordinator) handleNextRound(ctx context.Context, connID string, _ share.Request) error {
	return c.inRoom(ctx, connID, func(ctx context.Context, g *judgement.Game) error {
		if err := g.ValidateNextRound(); err != nil {
			return err
		}
		if g.HostID != connID {
			return notHost("start the next round")
		}
		if err := g.NextRound(); err != nil {
			return err
		}
		c.announceRound(g)
		return nil
	})
}

// announceRound sends each seat its own round_start and opens bidding.
func (c *Coordinator) announceRound(g *judgement.Game) {
	for _, p := range g.Players {
		if p.Connected {
			c.send(p.ID, roundStart(g, p))
		}
	}
	c.announceBidTurn(g)
}

func (c *Coordinator) announceBidTurn(g *judgement.Game) {
	turn, req, ok := bidTurn(g)
	if !ok {
		return
	}
	c.broadcast(g, turn)
	c.send(turn.CurrentBidderID, req)
}

func (c *Coordinator) announcePlayTurn(g *judgement.Game) {
	turn, req, ok := playTurn(g)
	if !ok {
		return
	}
	c.broadcast(g, turn)
	c.send(turn.CurrentPlayerID, req)
}

// resync brings a rejoining connection up to date without touching others.
func (c *Coordinator) resync(connID string, g *judgement.Game) {
	player := g.PlayerByID(connID)
	if player == nil {
		return
	}
	switch g.Phase {
	case judgement.PhaseRoundResult, judgement.PhaseGameOver:
		if n := len(g.ScoresHistory); n > 0 {
			c.send(connID, &share.RoundResult{
				Results:       g.ScoresHistory[n-1].Results,
				ScoresHistory: g.ScoresHistory,
				Game:          g.View(),
			})
		}
		if g.Phase == judgement.PhaseGameOver {
			c.send(connID, &share.GameOver{Results: g.Results(), Game: g.View()})
		}

	case judgement.PhaseBidding:
		c.send(connID, roundStart(g, player))
		if turn, req, ok := bidTurn(g); ok {
			c.send(connID, turn)
			if turn.CurrentBidderID == connID {
				c.send(connID, req)
			}
		}

	case judgement.PhasePlaying:
		c.send(connID, roundStart(g, player))
		if trick := g.Round.CurrentTrick; trick != nil {
			view := trick.View()
			for _, pc := range trick.Cards {
				name := ""
				if p := g.PlayerByID(pc.PlayerID); p != nil {
					name = p.Name
				}
				c.send(connID, &share.CardPlayed{
					PlayerID:   pc.PlayerID,
					PlayerName: name,
					Card:       pc.Card.View(),
					Trick:      view,
					Game:       g.View(),
				})
			}
		}
		if turn, req, ok := playTurn(g); ok {
			c.send(connID, turn)
			if turn.CurrentPlayerID == connID {
				c.send(connID, req)
			}
		}
	}
}

func roundStart(g *judgement.Game, p *judgement.Player) *share.RoundStart {
	r := g.Round
	return &share.RoundStart{
		Game:        g.View(),
		Players:     g.PlayerViews(),
		Hand:        judgement.CardViews(p.Hand),
		RoundNumber: g.RoundNumber(),
		TotalRounds: g.TotalRounds(),
		NumCards:    r.NumCards,
		TrumpSuit:   r.Trump,
		TrumpSymbol: r.Trump.Symbol(),
	}
}

func bidTurn(g *judgement.Game) (*share.BidTurn, *share.BidRequest, bool) {
	bidder := g.CurrentBidder()
	if bidder == nil {
		return nil, nil, false
	}
	var forbidden *int
	if f, ok := g.ForbiddenBid(); ok {
		forbidden = &f
	}
	turn := &share.BidTurn{
		CurrentBidderID:   bidder.ID,
		CurrentBidderName: bidder.Name,
		BidsSoFar:         g.Round.View().Bids,
		ForbiddenBid:      forbidden,
		NumCards:          g.Round.NumCards,
		Game:              g.View(),
	}
	req := &share.BidRequest{
		ValidBids:    g.ValidBids(),
		ForbiddenBid: forbidden,
		Hand:         judgement.CardViews(bidder.Hand),
	}
	return turn, req, true
}

func playTurn(g *judgement.Game) (*share.PlayTurn, *share.PlayRequest, bool) {
	current := g.CurrentPlayer()
	if current == nil {
		return nil, nil, false
	}
	trick := g.Round.CurrentTrick.View()
	turn := &share.PlayTurn{
		CurrentPlayerID:   current.ID,
		CurrentPlayerName: current.Name,
		Trick:             &trick,
		Game:              g.View(),
	}
	req := &share.PlayRequest{
		ValidCards: judgement.CardViews(g.ValidCards(current.ID)),
		Hand:       judgement.CardViews(current.Hand),
	}
	return turn, req, true
}

func (c *Coordinator) send(connID string, msg share.Push) {
	buf, err := share.Encode(msg)
	if err != nil {
		log.Error("Coordinator encode %s: %v", msg.GetType(), err)
		return
	}
	if err := c.transport.Send(connID, buf); err != nil {
		log.Debug("Coordinator[%s] drop %s: %v", connID, msg.GetType(), err)
	}
}

func (c *Coordinator) sendError(connID string, err error) {
	c.send(connID, &share.Error{Message: err.Error()})
}

// broadcast encodes once and sends to every connected seat except exclude.
func (c *Coordinator) broadcast(g *judgement.Game, msg share.Push, exclude ...string) {
	buf, err := share.Encode(msg)
	if err != nil {
		log.Error("Coordinator encode %s: %v", msg.GetType(), err)
		return
	}
	for _, p := range g.Players {
		if !p.Connected || containsID(exclude, p.ID) {
			continue
		}
		if err := c.transport.Send(p.ID, buf); err != nil {
			log.Debug("Coordinator[%s] drop %s: %v", p.ID, msg.GetType(), err)
		}
	}
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// pause sleeps for d unless the room is shutting down.
func pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
