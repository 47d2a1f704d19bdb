package schedules

import (
	"encoding/json"
	"log"
	"os"

	"gorm.io/gorm"

	clientModel "trainerku_backend/internals/features/clients/model"
	"trainerku_backend/internals/features/schedules/model"
	helper "trainerku_backend/internals/helpers"
)

type RuleSeed struct {
	Weekday   int      `json:"weekday"` // ISO: 1=Senin … 7=Minggu
	StartTime string   `json:"start_time"`
	BasePrice *float64 `json:"base_price"` // bisa null
}

type TemplateSeed struct {
	ClientName string     `json:"client_name"`
	ValidFrom  string     `json:"valid_from"`
	ValidTo    *string    `json:"valid_to"` // bisa null
	Rules      []RuleSeed `json:"rules"`
}

func SeedTemplatesFromJSON(db *gorm.DB, filePath string) {
	log.Println("📥 Membaca file:", filePath)

	content, err := os.ReadFile(filePath)
	if err != nil {
		log.Fatalf("❌ Gagal baca file JSON: %v", err)
	}

	var data []TemplateSeed
	if err := json.Unmarshal(content, &data); err != nil {
		log.Fatalf("❌ Gagal decode JSON: %v", err)
	}

	for _, item := range data {
		var client clientModel.ClientModel
		if err := db.Where("client_name = ?", item.ClientName).First(&client).Error; err != nil {
			log.Printf("❌ Client %q belum ada, jalankan seeder client dulu", item.ClientName)
			continue
		}

		var existing model.ScheduleTemplateModel
		if err := db.Where("schedule_template_client_id = ?", client.ClientID).First(&existing).Error; err == nil {
			log.Printf("ℹ️ Template untuk %q sudah ada, lewati...", item.ClientName)
			continue
		}

		validFrom, err := helper.ParseDate(item.ValidFrom)
		if err != nil {
			log.Printf("❌ valid_from %q tidak valid: %v", item.ValidFrom, err)
			continue
		}

		record := model.ScheduleTemplateModel{
			ScheduleTemplateClientID:    client.ClientID,
			ScheduleTemplateValidFrom:   validFrom,
			ScheduleTemplateHorizonDays: model.DefaultHorizonDays,
		}
		if item.ValidTo != nil {
			validTo, err := helper.ParseDate(*item.ValidTo)
			if err != nil {
				log.Printf("❌ valid_to %q tidak valid: %v", *item.ValidTo, err)
				continue
			}
			record.ScheduleTemplateValidTo = &validTo
		}

		if err := db.Create(&record).Error; err != nil {
			log.Printf("❌ Gagal insert template untuk %q: %v", item.ClientName, err)
			continue
		}

		for i, r := range item.Rules {
			start, err := helper.ParseTimeOfDay(r.StartTime)
			if err != nil {
				log.Printf("❌ start_time %q tidak valid: %v", r.StartTime, err)
				continue
			}
			rule := model.ScheduleRuleModel{
				ScheduleRuleTemplateID:    record.ScheduleTemplateID,
				ScheduleRulePosition:      i,
				ScheduleRuleWeekday:       r.Weekday,
				ScheduleRuleStartTime:     start,
				ScheduleRuleBasePrice:     r.BasePrice,
				ScheduleRuleIsActive:      true,
				ScheduleRuleIntervalWeeks: 1,
			}
			if err := db.Create(&rule).Error; err != nil {
				log.Printf("❌ Gagal insert rule %d untuk %q: %v", i, item.ClientName, err)
			}
		}
		log.Printf("✅ Berhasil insert template untuk %q (%d rule)", item.ClientName, len(item.Rules))
	}
}
