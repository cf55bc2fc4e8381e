package core

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"birdtwin/internal/blob"
	"birdtwin/pkg/domain"
)

func TestArchiveOwnerExportsTwinsWithTrails(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	twin := registerAdult(t, svc, "ASL-001", "owner-1")
	if _, _, err := svc.RecordEvent(ctx, twin.ID, domain.BirdEvent{Type: domain.EventFightWin}); err != nil {
		t.Fatalf("record event: %v", err)
	}
	registerAdult(t, svc, "ASL-002", "owner-1")
	registerAdult(t, svc, "ASL-003", "owner-2")

	store := blob.NewMemory()
	info, err := svc.ArchiveOwner(ctx, store, "owner-1")
	if err != nil {
		t.Fatalf("archive owner: %v", err)
	}
	if !strings.HasPrefix(info.Key, "owners/owner-1/") || !strings.HasSuffix(info.Key, ".json") {
		t.Fatalf("archive key: %q", info.Key)
	}
	if info.ContentType != "application/json" {
		t.Fatalf("content type: %q", info.ContentType)
	}
	if info.Metadata["twins"] != "2" {
		t.Fatalf("twin count metadata: %q", info.Metadata["twins"])
	}

	_, rc, err := store.Get(ctx, info.Key)
	if err != nil {
		t.Fatalf("get archive: %v", err)
	}
	payload, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}

	var archive OwnerArchive
	if err := json.Unmarshal(payload, &archive); err != nil {
		t.Fatalf("decode archive: %v", err)
	}
	if archive.OwnerID != "owner-1" || len(archive.Twins) != 2 {
		t.Fatalf("archive shape: %+v", archive)
	}
	byBird := map[string]TwinArchive{}
	for _, ta := range archive.Twins {
		byBird[ta.Twin.BirdID] = ta
	}
	// Each adult registration seeds a stage transition; ASL-001 adds a fight.
	if got := len(byBird["ASL-001"].Events); got != 2 {
		t.Fatalf("event trail: got %d want 2", got)
	}
	if got := len(byBird["ASL-002"].Events); got != 1 {
		t.Fatalf("events on ASL-002: got %d want 1", got)
	}
}

func TestArchiveAllOwnersExportsEachOwnerOnce(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	registerAdult(t, svc, "ASL-001", "owner-1")
	registerAdult(t, svc, "ASL-002", "owner-1")
	registerAdult(t, svc, "ASL-003", "owner-2")

	store := blob.NewMemory()
	exported, err := svc.ArchiveAllOwners(ctx, store)
	if err != nil {
		t.Fatalf("archive all: %v", err)
	}
	if exported != 2 {
		t.Fatalf("exported: got %d want 2", exported)
	}
	for _, prefix := range []string{"owners/owner-1/", "owners/owner-2/"} {
		infos, err := store.List(ctx, prefix)
		if err != nil {
			t.Fatalf("list %s: %v", prefix, err)
		}
		if len(infos) != 1 {
			t.Fatalf("%s: got %d blobs want 1", prefix, len(infos))
		}
	}

	// An empty store exports nothing and is not an error.
	empty, _ := newTestService(t)
	exported, err = empty.ArchiveAllOwners(ctx, blob.NewMemory())
	if err != nil || exported != 0 {
		t.Fatalf("empty export: %d %v", exported, err)
	}
}

func TestArchiveOwnerWithoutTwinsErrors(t *testing.T) {
	svc, _ := newTestService(t)
	store := blob.NewMemory()
	if _, err := svc.ArchiveOwner(context.Background(), store, "nobody"); err == nil {
		t.Fatal("expected error for owner without twins")
	}
}
