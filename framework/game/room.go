package game

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"judgement/common/log"
	"judgement/framework/game/engines/judgement"
)

const mailboxSize = 64

// RoomSummary is the lock-free view of a room used for listings and stats.
type RoomSummary struct {
	RoomCode    string          `json:"room_code"`
	HostID      string          `json:"host_id"`
	PlayerCount int             `json:"player_count"`
	Phase       judgement.Phase `json:"phase"`
}

// JobFunc runs on the room goroutine. ctx is the room's lifetime context.
type JobFunc func(ctx context.Context, g *judgement.Game) error

type job struct {
	fn   JobFunc
	err  error
	done chan struct{}
}

// Room owns one Game. Every read or write of the game happens inside a job
// executed by the room's single goroutine, so messages for the same room are
// applied one at a time while other rooms run independently.
type Room struct {
	Code string

	game      *judgement.Game
	jobs      chan *job
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
	summary   atomic.Pointer[RoomSummary]
}

func newRoom(parent context.Context, g *judgement.Game) *Room {
	ctx, cancel := context.WithCancel(parent)
	r := &Room{
		Code:   g.RoomCode,
		game:   g,
		jobs:   make(chan *job, mailboxSize),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	r.publish()
	go r.run()
	return r
}

// Do queues fn and waits for it to finish. ctx bounds only the wait; once
// queued, the job always runs with the room context.
func (r *Room) Do(ctx context.Context, fn JobFunc) error {
	j := &job{fn: fn, done: make(chan struct{})}
	select {
	case r.jobs <- j:
	case <-r.ctx.Done():
		return ErrRoomClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-j.done:
		return j.err
	case <-r.done:
		select {
		case <-j.done:
			return j.err
		default:
			return ErrRoomClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the room after the running job. Safe to call from inside a job.
func (r *Room) Close() {
	r.closeOnce.Do(func() {
		r.cancel()
		log.Debug("Room[%s] closed", r.Code)
	})
}

func (r *Room) Done() <-chan struct{} {
	return r.done
}

func (r *Room) Summary() RoomSummary {
	return *r.summary.Load()
}

func (r *Room) run() {
	defer close(r.done)
	for {
		select {
		case <-r.ctx.Done():
			return
		case j := <-r.jobs:
			if r.ctx.Err() != nil {
				j.err = ErrRoomClosed
				close(j.done)
				return
			}
			j.err = r.exec(j.fn)
			close(j.done)
			r.publish()
		}
	}
}

func (r *Room) exec(fn JobFunc) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("Room[%s] job panic: %v", r.Code, rec)
			err = fmt.Errorf("room %s: internal error", r.Code)
		}
	}()
	return fn(r.ctx, r.game)
}

func (r *Room) publish() {
	r.summary.Store(&RoomSummary{
		RoomCode:    r.game.RoomCode,
		HostID:      r.game.HostID,
		PlayerCount: len(r.game.Players),
		Phase:       r.game.Phase,
	})
}
