// internal/app/system/auditlog/auditlog.go
package auditlog

import (
	"context"
	"sync"
	"time"

	auditstore "github.com/mwalimuhub/unionhub/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// Mode controls where audit events go.
//
//	"all" - database and application log
//	"db"  - database only
//	"log" - application log only
//	"off" - discard
type Mode string

const (
	ModeAll Mode = "all"
	ModeDB  Mode = "db"
	ModeLog Mode = "log"
	ModeOff Mode = "off"
)

// ParseMode normalizes a configured mode string. Unknown values fall back to
// ModeAll so a typo in config never silently disables auditing.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeAll, ModeDB, ModeLog, ModeOff:
		return Mode(s)
	default:
		return ModeAll
	}
}

// Actor identifies who performed an audited action.
type Actor struct {
	ID   string
	Name string
	Role string
}

// Logger is the fire-and-forget audit sink. Record never blocks and never
// returns an error; events are buffered and written by a background worker.
// Failed or overflowing writes are logged and dropped, never surfaced to
// the caller's primary operation.
type Logger struct {
	store *auditstore.Store
	log   *zap.Logger
	mode  Mode

	events chan auditstore.Event
	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// New builds a Logger writing to the given store. A nil store downgrades
// ModeAll/ModeDB to ModeLog.
func New(store *auditstore.Store, mode Mode, log *zap.Logger) *Logger {
	if store == nil && (mode == ModeAll || mode == ModeDB) {
		mode = ModeLog
	}
	return &Logger{
		store:  store,
		log:    log,
		mode:   mode,
		events: make(chan auditstore.Event, 256),
		stopCh: make(chan struct{}),
	}
}

// Start launches the background writer.
func (l *Logger) Start() {
	l.wg.Add(1)
	go l.run()
	l.log.Info("audit logger started", zap.String("mode", string(l.mode)))
}

// Stop drains buffered events and stops the writer. Safe to call more than
// once.
func (l *Logger) Stop() {
	l.once.Do(func() {
		close(l.stopCh)
	})
	l.wg.Wait()
}

// Record enqueues one audit event. If the buffer is full the event is
// dropped with a warning; auditing never blocks or fails the caller.
func (l *Logger) Record(actor Actor, action, target string, details bson.M) {
	if l.mode == ModeOff {
		return
	}
	ev := auditstore.Event{
		ActorID:   actor.ID,
		ActorName: actor.Name,
		ActorRole: actor.Role,
		Action:    action,
		Target:    target,
		Details:   details,
		CreatedAt: time.Now(),
	}
	select {
	case l.events <- ev:
	default:
		l.log.Warn("audit buffer full; event dropped",
			zap.String("action", action),
			zap.String("target", target))
	}
}

func (l *Logger) run() {
	defer l.wg.Done()
	for {
		select {
		case ev := <-l.events:
			l.write(ev)
		case <-l.stopCh:
			// Drain whatever is still buffered before exiting.
			for {
				select {
				case ev := <-l.events:
					l.write(ev)
				default:
					return
				}
			}
		}
	}
}

func (l *Logger) write(ev auditstore.Event) {
	if l.mode == ModeAll || l.mode == ModeLog {
		l.log.Info("audit",
			zap.String("actor_id", ev.ActorID),
			zap.String("actor_name", ev.ActorName),
			zap.String("actor_role", ev.ActorRole),
			zap.String("action", ev.Action),
			zap.String("target", ev.Target))
	}
	if l.mode == ModeAll || l.mode == ModeDB {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := l.store.Insert(ctx, ev); err != nil {
			l.log.Error("audit write failed",
				zap.String("action", ev.Action),
				zap.Error(err))
		}
	}
}
