package repositories

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/desertthunder/mvx/internal/shared"
)

// readRecord decodes the record stored under key into v, leaving v untouched when the key is absent.
func readRecord(store shared.Storage, key string, v any) error {
	raw, ok, err := store.GetItem(key)
	if err != nil {
		return err
	}
	if !ok || raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrCorruptRecord, key, err)
	}
	return nil
}

// writeRecord encodes v without HTML escaping and stores it under key.
func writeRecord(store shared.Storage, key string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return store.SetItem(key, string(bytes.TrimRight(buf.Bytes(), "\n")))
}
