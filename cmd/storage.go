package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/mvx/internal/shared"
	"github.com/urfave/cli/v3"
)

func (r *Runner) storageFor(cmd *cli.Command) (shared.Storage, string) {
	if cmd.Bool("session") {
		return r.session, "session"
	}
	return r.local, "local"
}

func storageKeys(store shared.Storage) ([]string, error) {
	switch s := store.(type) {
	case *shared.SQLStorage:
		return s.Keys()
	case *shared.MemoryStorage:
		return s.Keys(), nil
	default:
		return nil, fmt.Errorf("%w: storage cannot list keys", shared.ErrInvalidArgument)
	}
}

// StorageKeys lists the keys held in local or session storage.
func (r *Runner) StorageKeys(ctx context.Context, cmd *cli.Command) error {
	store, name := r.storageFor(cmd)
	keys, err := storageKeys(store)
	if err != nil {
		return err
	}

	r.writePlainHeader(fmt.Sprintf("%s storage (%d keys)", name, len(keys)))
	for _, k := range keys {
		r.writePlain("%s\n", k)
	}
	return nil
}

// StorageGet prints the raw value of a key.
func (r *Runner) StorageGet(ctx context.Context, cmd *cli.Command) error {
	key := cmd.StringArg("key")
	if key == "" {
		return fmt.Errorf("%w: key is required", shared.ErrMissingArgument)
	}

	store, name := r.storageFor(cmd)
	value, ok, err := store.GetItem(key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s has no key %q", shared.ErrRecordNotFound, name, key)
	}
	return r.writePlain("%s\n", value)
}

// StorageClear deletes every key in local or session storage.
func (r *Runner) StorageClear(ctx context.Context, cmd *cli.Command) error {
	store, name := r.storageFor(cmd)
	keys, err := storageKeys(store)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := store.RemoveItem(k); err != nil {
			return err
		}
	}

	r.logger.Warn("storage cleared", "storage", name, "keys", len(keys))
	return r.writePlain("✓ Cleared %d keys from %s storage\n", len(keys), name)
}
