package clients

import (
	"encoding/json"
	"log"
	"os"

	"gorm.io/gorm"

	"trainerku_backend/internals/features/clients/model"
	helper "trainerku_backend/internals/helpers"
)

type ClientSeed struct {
	ClientName      string  `json:"client_name"`
	ClientStartDate string  `json:"client_start_date"` // "YYYY-MM-DD"
	ClientNote      *string `json:"client_note"`       // bisa null
}

func SeedClientsFromJSON(db *gorm.DB, filePath string) {
	log.Println("📥 Membaca file:", filePath)

	content, err := os.ReadFile(filePath)
	if err != nil {
		log.Fatalf("❌ Gagal baca file JSON: %v", err)
	}

	var data []ClientSeed
	if err := json.Unmarshal(content, &data); err != nil {
		log.Fatalf("❌ Gagal decode JSON: %v", err)
	}

	for _, item := range data {
		var existing model.ClientModel
		if err := db.Where("client_name = ?", item.ClientName).First(&existing).Error; err == nil {
			log.Printf("ℹ️ Client %q sudah ada, lewati...", item.ClientName)
			continue
		}

		start, err := helper.ParseDate(item.ClientStartDate)
		if err != nil {
			log.Printf("❌ Tanggal mulai %q tidak valid: %v", item.ClientStartDate, err)
			continue
		}

		record := model.ClientModel{
			ClientName:      item.ClientName,
			ClientStatus:    model.ClientStatusActive,
			ClientStartDate: start,
			ClientNote:      item.ClientNote,
		}

		if err := db.Create(&record).Error; err != nil {
			log.Printf("❌ Gagal insert client %q: %v", item.ClientName, err)
		} else {
			log.Printf("✅ Berhasil insert client %q", item.ClientName)
		}
	}
}
