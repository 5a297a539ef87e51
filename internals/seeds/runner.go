package seeds

import (
	"log"
	"os"
	"strconv"

	"gorm.io/gorm"
)

// RunAllSeeds populates the starter catalog (one tree, its quests and the
// core badge set). Gated behind SEED_ON_BOOT so production boots stay clean.
// Every seed upserts by its natural key, so re-running is safe.
func RunAllSeeds(db *gorm.DB) {
	if v, _ := strconv.ParseBool(os.Getenv("SEED_ON_BOOT")); !v {
		log.Println("[SEED] skipped (SEED_ON_BOOT not set)")
		return
	}

	log.Println("[SEED] seeding starter catalog...")
	if err := SeedBadges(db); err != nil {
		log.Printf("[SEED ERROR] badges: %v", err)
		return
	}
	if err := SeedQuestTrees(db); err != nil {
		log.Printf("[SEED ERROR] quest trees: %v", err)
		return
	}
	log.Println("✅ Seeding complete")
}
