package scheduler

import (
	"log"
	"os"
	"strconv"
	"time"

	"gorm.io/gorm"

	"questdeck_backend/internals/features/quests/progress/service"
)

// StartExpirySweep runs the optional background pass that marks overdue
// in_progress rows as expired. Deadlines are advisory (the accept path also
// expires lazily), so the sweep is off unless QUEST_EXPIRY_SWEEP=true.
func StartExpirySweep(db *gorm.DB) {
	if v, _ := strconv.ParseBool(os.Getenv("QUEST_EXPIRY_SWEEP")); !v {
		log.Println("[CLEANUP] quest expiry sweep disabled")
		return
	}

	intervalMinutes := 60
	if val := os.Getenv("QUEST_EXPIRY_SWEEP_MINUTES"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			intervalMinutes = parsed
		}
	}

	sm := service.NewStateMachine()
	go func() {
		for {
			n, err := sm.SweepExpired(db)
			if err != nil {
				log.Printf("[CLEANUP ERROR] quest expiry sweep: %v", err)
			} else if n > 0 {
				log.Printf("[CLEANUP] %d overdue quests marked expired", n)
			}
			time.Sleep(time.Duration(intervalMinutes) * time.Minute)
		}
	}()
}
