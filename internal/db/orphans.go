package db

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/FabCode67/neoparental/internal/blob"
)

// orphanMinAge keeps the sweeper away from uploads whose record insert
// may still be in flight.
const orphanMinAge = 24 * time.Hour

// runOrphanSweepOnce deletes blobs older than orphanMinAge that no
// audio record references. An aborted record insert leaves the blob
// behind; this is the eventual-consistency cleanup for that window.
func runOrphanSweepOnce(db *gorm.DB, blobs blob.Store) error {
	ctx := context.Background()

	objects, err := blobs.List(ctx)
	if err != nil {
		return err
	}

	var keys []string
	if err := db.Model(&AudioPrediction{}).Pluck("storage_key", &keys).Error; err != nil {
		return err
	}
	referenced := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		referenced[k] = struct{}{}
	}

	cutoff := time.Now().Add(-orphanMinAge)
	for _, obj := range objects {
		if _, ok := referenced[obj.Key]; ok {
			continue
		}
		if obj.LastModified.After(cutoff) {
			continue
		}
		if err := blobs.Delete(ctx, obj.Key); err != nil {
			log.Printf("orphan sweep: failed to delete %s: %v", obj.Key, err)
			continue
		}
		log.Printf("orphan sweep: deleted unreferenced blob %s", obj.Key)
	}
	return nil
}

// StartOrphanSweeper launches a background goroutine that removes
// unreferenced blobs once at startup and then once per day.
func StartOrphanSweeper(db *gorm.DB, blobs blob.Store) {
	go func() {
		if err := runOrphanSweepOnce(db, blobs); err != nil {
			log.Printf("orphan sweep error (startup): %v", err)
		}

		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			if err := runOrphanSweepOnce(db, blobs); err != nil {
				log.Printf("orphan sweep error: %v", err)
			}
		}
	}()
}
