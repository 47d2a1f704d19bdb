package main

import (
	"log"

	"trainerku_backend/internals/configs"
	database "trainerku_backend/internals/databases"
	billingModel "trainerku_backend/internals/features/billing/model"
	clientModel "trainerku_backend/internals/features/clients/model"
	schedModel "trainerku_backend/internals/features/schedules/model"
	seeds "trainerku_backend/internals/seeds"
)

// Bootstrap & migrasi skema. Layanan-layanan domain dipakai sebagai library
// oleh aplikasi di atasnya; di sini cukup siapkan DB-nya.
func main() {
	configs.LoadEnv()

	database.ConnectDB()
	database.TunePool()

	if err := database.DB.AutoMigrate(
		&clientModel.ClientModel{},
		&schedModel.ScheduleTemplateModel{},
		&schedModel.ScheduleRuleModel{},
		&schedModel.CalendarSessionModel{},
		&billingModel.PackageModel{},
		&billingModel.PaymentModel{},
		&billingModel.PaymentAllocationModel{},
	); err != nil {
		log.Fatalf("❌ Gagal migrasi skema: %v", err)
	}
	log.Println("✅ Migrasi skema selesai.")

	if configs.GetEnv("RUN_SEEDS") == "true" {
		seeds.RunAllSeeds(database.DB)
	}

	if err := database.Ping(); err != nil {
		log.Fatalf("❌ DB ping gagal: %v", err)
	}
	log.Println("✅ trainerku_backend siap.")

	if sqlDB, err := database.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
