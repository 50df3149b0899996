// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/securevote/kvstore"
	"github.com/danielhkuo/securevote/models"
)

// DefaultKey is the key the whole document lives under.
const DefaultKey = "data"

// ErrConflict means the stored revision moved since the caller loaded it.
var ErrConflict = errors.New("state revision conflict")

// document is the stored form: the AppState fields plus a revision stamp.
type document struct {
	Revision uint64 `json:"revision"`
	models.AppState
}

// Snapshot is a loaded copy of the state.
type Snapshot struct {
	State    models.AppState
	Revision uint64
	// Exists is false when nothing was stored and State is the default.
	Exists bool
}

type Repository struct {
	store    kvstore.Store
	key      string
	defaults Defaults
}

func NewRepository(store kvstore.Store, key string, defaults Defaults) *Repository {
	if key == "" {
		key = DefaultKey
	}
	return &Repository{store: store, key: key, defaults: defaults}
}

func (r *Repository) Key() string {
	return r.key
}

// Load reads the document. When none is stored it returns the default
// state without persisting it.
func (r *Repository) Load(ctx context.Context) (Snapshot, error) {
	doc, raw, err := r.read(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	if raw == nil {
		return Snapshot{State: r.defaults.State()}, nil
	}
	return Snapshot{State: doc.AppState, Revision: doc.Revision, Exists: true}, nil
}

// Save writes st as revision expected+1 and returns ErrConflict when the
// stored revision is no longer expected. Stores that implement
// kvstore.Swapper make the check and the write one atomic step; on the
// others the revision is re-read first, which only narrows the window and
// leaves exclusion to the caller's lock.
func (r *Repository) Save(ctx context.Context, st models.AppState, expected uint64) (uint64, error) {
	current, raw, err := r.read(ctx)
	if err != nil {
		return 0, err
	}
	var stored uint64
	if raw != nil {
		stored = current.Revision
	}
	if stored != expected {
		return 0, fmt.Errorf("%w: expected revision %d, found %d", ErrConflict, expected, stored)
	}

	st.Normalize()
	doc := document{Revision: expected + 1, AppState: st}
	data, err := json.Marshal(doc)
	if err != nil {
		return 0, fmt.Errorf("failed to encode state: %w", err)
	}

	if swapper, ok := r.store.(kvstore.Swapper); ok {
		swapped, err := swapper.CompareAndSwap(ctx, r.key, raw, data)
		if err != nil {
			return 0, err
		}
		if !swapped {
			return 0, fmt.Errorf("%w: document changed while writing revision %d", ErrConflict, doc.Revision)
		}
	} else if err := r.store.Put(ctx, r.key, data); err != nil {
		return 0, err
	}

	slog.Debug("state saved", "key", r.key, "revision", doc.Revision, "size", humanize.Bytes(uint64(len(data))))
	return doc.Revision, nil
}

// read returns the decoded document and its raw bytes; raw is nil when
// nothing is stored.
func (r *Repository) read(ctx context.Context) (document, []byte, error) {
	data, err := r.store.Get(ctx, r.key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return document{}, nil, nil
	}
	if err != nil {
		return document{}, nil, err
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return document{}, nil, fmt.Errorf("%w: corrupt state document: %w", kvstore.ErrStore, err)
	}
	doc.AppState.Normalize()
	return doc, data, nil
}
