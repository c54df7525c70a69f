package client

import (
	"context"
	"errors"
	"time"
)

// Poller refreshes the store from the server on a fixed interval. There is
// no push channel; polling is the synchronization mechanism.
type Poller struct {
	client   *Client
	store    *Store
	interval time.Duration
}

func NewPoller(client *Client, store *Store, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Poller{client: client, store: store, interval: interval}
}

// Run refreshes immediately, then on every tick until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	if err := p.refresh(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := p.refresh(ctx); err != nil {
				return err
			}
		}
	}
}

// refresh pulls categories and tasks. Transient failures land in the
// store's error field and prior state stays intact; a dead session clears
// the store and stops the poller.
func (p *Poller) refresh(ctx context.Context) error {
	categories, err := p.client.ListCategories(ctx)
	if err != nil {
		return p.fail(err)
	}
	tasks, err := p.client.ListTasks(ctx, TaskFilter{})
	if err != nil {
		return p.fail(err)
	}

	p.store.Dispatch(Action{Type: ActionCategoriesLoaded, Categories: categories})
	p.store.Dispatch(Action{Type: ActionTasksLoaded, Tasks: tasks})
	p.store.Dispatch(Action{Type: ActionErrorCleared})
	return nil
}

func (p *Poller) fail(err error) error {
	if errors.Is(err, ErrLoggedOut) {
		p.store.Dispatch(Action{Type: ActionUserCleared})
		return err
	}
	p.store.Dispatch(Action{Type: ActionErrorSet, Err: err.Error()})
	return nil
}
