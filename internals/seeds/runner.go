package seeds

import (
	"gorm.io/gorm"

	clients "trainerku_backend/internals/seeds/clients"
	schedules "trainerku_backend/internals/seeds/schedules"
)

func RunAllSeeds(db *gorm.DB) {
	//* Clients
	clients.SeedClientsFromJSON(db, "internals/seeds/clients/data_clients.json")

	//* Schedule templates (butuh clients di atas)
	schedules.SeedTemplatesFromJSON(db, "internals/seeds/schedules/data_templates.json")
}
