package seeds

import (
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"questdeck_backend/internals/features/progression/rules"
	questModel "questdeck_backend/internals/features/quests/quest/model"
	treeModel "questdeck_backend/internals/features/quests/tree/model"
)

type questSeed struct {
	Title            string
	Description      string
	XPReward         int
	Difficulty       rules.Difficulty
	DeadlineDays     int
	EstimatedMinutes int
	IsCapstone       bool
	SortOrder        int
	Tasks            []questModel.QuestTask
	// prerequisite quests referenced by title within the same tree
	PrereqTitles []string
}

var starterTreeSeed = struct {
	Name        string
	Description string
	Topic       string
	Quests      []questSeed
}{
	Name:        "Backend Foundations",
	Description: "From your first HTTP handler to a deployed service.",
	Topic:       "backend",
	Quests: []questSeed{
		{
			Title:            "Hello, HTTP",
			Description:      "Build and run a minimal HTTP server.",
			XPReward:         100,
			Difficulty:       rules.DifficultyEasy,
			DeadlineDays:     7,
			EstimatedMinutes: 60,
			SortOrder:        1,
			Tasks: []questModel.QuestTask{
				{ID: "server", Title: "Serve a hello endpoint", Order: 1},
				{ID: "status", Title: "Return proper status codes", Order: 2},
			},
		},
		{
			Title:            "REST in Practice",
			Description:      "Design and implement a small CRUD resource.",
			XPReward:         200,
			Difficulty:       rules.DifficultyMedium,
			DeadlineDays:     10,
			EstimatedMinutes: 180,
			SortOrder:        2,
			PrereqTitles:     []string{"Hello, HTTP"},
			Tasks: []questModel.QuestTask{
				{ID: "model", Title: "Define the resource model", Order: 1},
				{ID: "endpoints", Title: "Implement the CRUD endpoints", Order: 2},
				{ID: "validation", Title: "Validate request payloads", Order: 3},
			},
		},
		{
			Title:            "Persist It",
			Description:      "Back the resource with a real database.",
			XPReward:         250,
			Difficulty:       rules.DifficultyMedium,
			DeadlineDays:     10,
			EstimatedMinutes: 240,
			SortOrder:        3,
			PrereqTitles:     []string{"REST in Practice"},
			Tasks: []questModel.QuestTask{
				{ID: "schema", Title: "Design the schema", Order: 1},
				{ID: "queries", Title: "Wire queries into the handlers", Order: 2},
				{ID: "migrations", Title: "Add a migration script", Order: 3},
			},
		},
		{
			Title:            "Ship the Service",
			Description:      "Containerize, configure and deploy the service end to end.",
			XPReward:         500,
			Difficulty:       rules.DifficultyHard,
			DeadlineDays:     14,
			EstimatedMinutes: 480,
			IsCapstone:       true,
			SortOrder:        4,
			PrereqTitles:     []string{"Persist It"},
			Tasks: []questModel.QuestTask{
				{ID: "container", Title: "Write the container build", Order: 1},
				{ID: "config", Title: "Externalize configuration", Order: 2},
				{ID: "deploy", Title: "Deploy and verify", Order: 3},
				{ID: "writeup", Title: "Document the deployment", Order: 4},
			},
		},
	},
}

// SeedQuestTrees ensures the starter tree and its quests exist, wiring the
// prerequisite chain by quest title.
func SeedQuestTrees(db *gorm.DB) error {
	tree := treeModel.QuestTreeModel{
		QuestTreeName:        starterTreeSeed.Name,
		QuestTreeDescription: starterTreeSeed.Description,
		QuestTreeTopic:       starterTreeSeed.Topic,
		QuestTreeIsPublished: true,
	}
	if err := db.Where("quest_tree_name = ?", starterTreeSeed.Name).
		FirstOrCreate(&tree).Error; err != nil {
		return err
	}

	byTitle := map[string]*questModel.QuestModel{}
	for _, s := range starterTreeSeed.Quests {
		tasks, err := questModel.MarshalTasks(s.Tasks)
		if err != nil {
			return err
		}
		prereqIDs := make([]uuid.UUID, 0, len(s.PrereqTitles))
		for _, title := range s.PrereqTitles {
			if q, ok := byTitle[title]; ok {
				prereqIDs = append(prereqIDs, q.QuestID)
			}
		}
		prereqs, err := questModel.MarshalPrerequisites(prereqIDs)
		if err != nil {
			return err
		}

		quest := questModel.QuestModel{
			QuestTreeID:           tree.QuestTreeID,
			QuestTitle:            s.Title,
			QuestDescription:      s.Description,
			QuestXPReward:         s.XPReward,
			QuestDifficulty:       s.Difficulty,
			QuestDeadlineDays:     s.DeadlineDays,
			QuestEstimatedMinutes: s.EstimatedMinutes,
			QuestIsCapstone:       s.IsCapstone,
			QuestIsPublished:      true,
			QuestSortOrder:        s.SortOrder,
			QuestTasks:            tasks,
			QuestPrerequisiteIDs:  prereqs,
		}
		if err := db.Where("quest_tree_id = ? AND quest_title = ?", tree.QuestTreeID, s.Title).
			FirstOrCreate(&quest).Error; err != nil {
			return err
		}
		byTitle[s.Title] = &quest
	}

	log.Printf("[SEED] tree %q with %d quests ensured", starterTreeSeed.Name, len(starterTreeSeed.Quests))
	return nil
}
