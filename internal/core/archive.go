package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"birdtwin/internal/blob"
	"birdtwin/pkg/domain"
)

// OwnerArchive is the JSON document exported for an owner's flock: every
// twin with its full event trail, suitable for audits and offline valuation
// reviews.
type OwnerArchive struct {
	OwnerID    string        `json:"owner_id"`
	ExportedAt time.Time     `json:"exported_at"`
	Twins      []TwinArchive `json:"twins"`
}

// TwinArchive pairs a twin snapshot with its event trail.
type TwinArchive struct {
	Twin   domain.DigitalTwin `json:"twin"`
	Events []domain.BirdEvent `json:"events"`
}

// ArchiveOwner exports an owner's twins and event trails to the archive
// store under a timestamped key and returns the blob info.
func (s *Service) ArchiveOwner(ctx context.Context, store blob.Store, ownerID string) (blob.Info, error) {
	twins := s.store.ListTwinsByOwner(ownerID)
	if len(twins) == 0 {
		return blob.Info{}, fmt.Errorf("owner %q has no twins", ownerID)
	}

	archive := OwnerArchive{OwnerID: ownerID, ExportedAt: time.Now().UTC()}
	for _, twin := range twins {
		archive.Twins = append(archive.Twins, TwinArchive{
			Twin:   twin,
			Events: s.store.EventsForTwin(twin.ID),
		})
	}

	payload, err := json.MarshalIndent(archive, "", "  ")
	if err != nil {
		return blob.Info{}, fmt.Errorf("encode archive: %w", err)
	}

	key := fmt.Sprintf("owners/%s/%s.json", ownerID, archive.ExportedAt.Format("20060102T150405Z"))
	info, err := store.Put(ctx, key, bytes.NewReader(payload), blob.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"owner_id": ownerID, "twins": fmt.Sprintf("%d", len(archive.Twins))},
	})
	if err != nil {
		return blob.Info{}, fmt.Errorf("store archive: %w", err)
	}

	s.log.WithField("key", info.Key).Info("owner archive exported")
	return info, nil
}

// ArchiveAllOwners exports one archive per distinct owner in the store and
// returns the number written. Used by the daemon's periodic export.
func (s *Service) ArchiveAllOwners(ctx context.Context, store blob.Store) (int, error) {
	seen := map[string]bool{}
	var owners []string
	for _, twin := range s.store.ListTwins() {
		if !seen[twin.OwnerID] {
			seen[twin.OwnerID] = true
			owners = append(owners, twin.OwnerID)
		}
	}
	sort.Strings(owners)

	for _, ownerID := range owners {
		if _, err := s.ArchiveOwner(ctx, store, ownerID); err != nil {
			return 0, fmt.Errorf("archive owner %s: %w", ownerID, err)
		}
	}
	return len(owners), nil
}
