package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/pterm/pterm"

	"judgement/common/log"
	"judgement/framework/game"
	"judgement/framework/game/engines/judgement"
	"judgement/framework/game/share"
)

// maxSimulationEvents bounds one game; a full 4 player game sends a few thousand frames.
const maxSimulationEvents = 200_000

type SimulateOptions struct {
	Players int
	Games   int
	Seed    uint64
}

type SimulationResult struct {
	Game      int
	RoomCode  string
	Rounds    int
	Rankings  []judgement.Ranking
	Messages  int
	Forbidden int // bid requests that excluded a value
}

type frame struct {
	connID string
	body   []byte
}

// queueTransport buffers every frame in memory; Send never blocks.
type queueTransport struct {
	mu     sync.Mutex
	frames []frame
}

func (q *queueTransport) Send(connID string, buf []byte) error {
	q.mu.Lock()
	q.frames = append(q.frames, frame{connID: connID, body: buf})
	q.mu.Unlock()
	return nil
}

func (q *queueTransport) Close(string) {}

func (q *queueTransport) drain() []frame {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.frames
	q.frames = nil
	return out
}

// inbound is the union of the fields the bots react to.
type inbound struct {
	Type         share.MessageType    `json:"type"`
	Message      string               `json:"message"`
	ValidBids    []int                `json:"valid_bids"`
	ForbiddenBid *int                 `json:"forbidden_bid"`
	ValidCards   []judgement.CardView `json:"valid_cards"`
	Results      json.RawMessage      `json:"results"`
	Game         judgement.GameView   `json:"game"`
}

// Simulate plays complete games between random bots through the coordinator.
func Simulate(ctx context.Context, opts SimulateOptions) ([]SimulationResult, error) {
	if opts.Players < judgement.MinPlayers || opts.Players > judgement.MaxPlayers {
		return nil, fmt.Errorf("players must be between %d and %d", judgement.MinPlayers, judgement.MaxPlayers)
	}
	if opts.Games <= 0 {
		return nil, errors.New("games must be positive")
	}
	results := make([]SimulationResult, 0, opts.Games)
	for i := range opts.Games {
		res, err := simulateGame(ctx, opts, i)
		if err != nil {
			return results, fmt.Errorf("game %d: %w", i+1, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func simulateGame(ctx context.Context, opts SimulateOptions, index int) (SimulationResult, error) {
	gameIndex := uint64(index)
	rm := game.NewRoomManager(game.WithGameRand(func() *rand.Rand {
		return rand.New(rand.NewPCG(opts.Seed, gameIndex))
	}))
	defer rm.Shutdown()
	transport := &queueTransport{}
	coordinator := game.NewCoordinator(rm, transport, game.Pacing{})
	botRand := rand.New(rand.NewPCG(opts.Seed^0x5eed, gameIndex))

	bots := make([]string, opts.Players)
	for i := range bots {
		bots[i] = fmt.Sprintf("bot-%d", i+1)
		coordinator.OnConnect(ctx, bots[i])
	}
	host := bots[0]

	send := func(connID string, msg map[string]any) {
		body, _ := json.Marshal(msg)
		coordinator.OnMessage(ctx, connID, body)
	}

	send(host, map[string]any{"type": share.TypeCreateRoom, "player_name": "Bot 1"})
	room, ok := rm.GetPlayerRoom(host)
	if !ok {
		return SimulationResult{}, errors.New("host has no room after create_room")
	}
	for i, bot := range bots[1:] {
		send(bot, map[string]any{"type": share.TypeJoinRoom, "player_name": fmt.Sprintf("Bot %d", i+2), "room_code": room.Code})
	}
	send(host, map[string]any{"type": share.TypeStartGame})

	res := SimulationResult{Game: index + 1, RoomCode: room.Code}
	for res.Messages < maxSimulationEvents {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		batch := transport.drain()
		if len(batch) == 0 {
			return res, errors.New("simulation stalled before game_over")
		}
		for _, f := range batch {
			res.Messages++
			var msg inbound
			if err := json.Unmarshal(f.body, &msg); err != nil {
				return res, fmt.Errorf("decode frame: %w", err)
			}
			switch msg.Type {
			case share.TypeError:
				return res, fmt.Errorf("%s got error: %s", f.connID, msg.Message)
			case share.TypeBidRequest:
				if msg.ForbiddenBid != nil {
					res.Forbidden++
				}
				bid := msg.ValidBids[botRand.IntN(len(msg.ValidBids))]
				send(f.connID, map[string]any{"type": share.TypePlaceBid, "bid": bid})
			case share.TypePlayRequest:
				card := msg.ValidCards[botRand.IntN(len(msg.ValidCards))]
				send(f.connID, map[string]any{"type": share.TypePlayCard, "suit": card.Suit, "rank": card.Rank})
			case share.TypeRoundResult:
				if f.connID == host {
					res.Rounds++
					if msg.Game.Phase == judgement.PhaseRoundResult {
						send(host, map[string]any{"type": share.TypeNextRound})
					}
				}
			case share.TypeGameOver:
				if f.connID != host {
					continue
				}
				var final judgement.GameResults
				if err := json.Unmarshal(msg.Results, &final); err != nil {
					return res, fmt.Errorf("decode results: %w", err)
				}
				res.Rankings = final.Rankings
				log.Debug("Simulation game %d in room %s finished after %d rounds", res.Game, res.RoomCode, res.Rounds)
				return res, nil
			}
		}
	}
	return res, errors.New("simulation exceeded its event budget")
}

// RenderStandings prints one table per game and a win tally.
func RenderStandings(out io.Writer, results []SimulationResult) error {
	wins := make(map[string]int)
	points := make(map[string]int)
	for _, res := range results {
		data := pterm.TableData{{"Rank", "Player", "Score"}}
		for _, r := range res.Rankings {
			data = append(data, []string{fmt.Sprint(r.Rank), r.PlayerName, fmt.Sprint(r.TotalScore)})
			points[r.PlayerName] += r.TotalScore
			if r.Rank == 1 {
				wins[r.PlayerName]++
			}
		}
		title := pterm.DefaultSection.Sprintf("Game %d (room %s, %d rounds, %d frames)", res.Game, res.RoomCode, res.Rounds, res.Messages)
		table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
		if err != nil {
			return err
		}
		if _, err := fmt.Fprint(out, title, table, "\n"); err != nil {
			return err
		}
	}

	names := make([]string, 0, len(points))
	for name := range points {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if wins[names[i]] != wins[names[j]] {
			return wins[names[i]] > wins[names[j]]
		}
		return names[i] < names[j]
	})
	data := pterm.TableData{{"Player", "Wins", "Total points"}}
	for _, name := range names {
		data = append(data, []string{name, fmt.Sprint(wins[name]), fmt.Sprint(points[name])})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(out, pterm.DefaultSection.Sprint("Standings"), table, "\n")
	return err
}
