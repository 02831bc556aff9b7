package bot

import (
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// dispatcher runs updates of one user strictly in arrival order while
// different users proceed in parallel.
type dispatcher struct {
	handle func(tgbotapi.Update)

	mu     sync.Mutex
	queues map[int64][]tgbotapi.Update
	wg     sync.WaitGroup
}

func newDispatcher(handle func(tgbotapi.Update)) *dispatcher {
	return &dispatcher{handle: handle, queues: make(map[int64][]tgbotapi.Update)}
}

func (d *dispatcher) dispatch(update tgbotapi.Update) {
	key := updateSender(update)

	d.mu.Lock()
	pending, running := d.queues[key]
	d.queues[key] = append(pending, update)
	d.mu.Unlock()

	if !running {
		d.wg.Add(1)
		go d.drain(key)
	}
}

func (d *dispatcher) drain(key int64) {
	defer d.wg.Done()
	for {
		d.mu.Lock()
		queue := d.queues[key]
		if len(queue) == 0 {
			delete(d.queues, key)
			d.mu.Unlock()
			return
		}
		update := queue[0]
		d.queues[key] = queue[1:]
		d.mu.Unlock()

		d.handle(update)
	}
}

// wait blocks until every queued update has been handled.
func (d *dispatcher) wait() {
	d.wg.Wait()
}

func updateSender(update tgbotapi.Update) int64 {
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.ID
	}
	return 0
}
