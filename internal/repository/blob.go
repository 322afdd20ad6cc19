// Package repository persists each entity collection as one versioned blob
// through the storage.BlobStore capability. Repositories load once at
// startup, run their migration chain, and write the whole blob back on
// every mutation. A single logical writer is assumed throughout.
package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/CPAtoCybersecurity/csf-profile-sub000/pkg/storage"
)

// Blob keys, one per store.
const (
	usersKey        = "users"
	controlsKey     = "controls"
	assessmentsKey  = "assessments"
	evaluationsKey  = "evaluations"
	requirementsKey = "requirements"
	artifactsKey    = "artifacts"
)

// storedState is the on-disk envelope every store writes: the schema
// version consumed by that store's migration chain plus the payload.
type storedState struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// loadState reads and migrates one store's blob. An absent blob yields
// version 0 and a nil payload so the chain's new-install migrations run.
func loadState(ctx context.Context, store storage.BlobStore, key string, chain []migration, out interface{}) error {
	raw, found, err := store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}

	var state interface{}
	version := 0
	if found {
		var envelope storedState
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return fmt.Errorf("decode %s envelope: %w", key, err)
		}
		version = envelope.Version
		if len(envelope.Data) > 0 {
			if err := json.Unmarshal(envelope.Data, &state); err != nil {
				return fmt.Errorf("decode %s state: %w", key, err)
			}
		}
	}

	state = runChain(version, state, chain)

	migrated, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode migrated %s state: %w", key, err)
	}
	if err := json.Unmarshal(migrated, out); err != nil {
		return fmt.Errorf("decode migrated %s state: %w", key, err)
	}
	return nil
}

// saveState writes one store's blob at the chain's current version.
func saveState(ctx context.Context, store storage.BlobStore, key string, chain []migration, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s state: %w", key, err)
	}
	envelope, err := json.Marshal(storedState{Version: currentVersion(chain), Data: payload})
	if err != nil {
		return fmt.Errorf("encode %s envelope: %w", key, err)
	}
	if err := store.Put(ctx, key, envelope); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
