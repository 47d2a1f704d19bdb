// file: internals/features/backup/service/backup_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	billingModel "trainerku_backend/internals/features/billing/model"
	billingService "trainerku_backend/internals/features/billing/service"
	clientModel "trainerku_backend/internals/features/clients/model"
	schedModel "trainerku_backend/internals/features/schedules/model"
	"trainerku_backend/internals/store"
)

/* =========================
   Backup document
========================= */

const (
	AppVersion    = "0.9.0"
	SchemaVersion = 2
)

// ErrSchemaTooNew rejects restores produced by a newer app build.
var ErrSchemaTooNew = errors.New("backup schema version newer than supported")

type BackupDocument struct {
	AppVersion    string    `json:"app_version"`
	SchemaVersion int       `json:"schema_version"`
	ExportedAt    time.Time `json:"exported_at"`

	Clients     []clientModel.ClientModel              `json:"clients"`
	Templates   []schedModel.ScheduleTemplateModel     `json:"templates"`
	Rules       []schedModel.ScheduleRuleModel         `json:"rules"`
	Sessions    []schedModel.CalendarSessionModel      `json:"sessions"`
	Packages    []billingModel.PackageModel            `json:"packages"`
	Payments    []billingModel.PaymentModel            `json:"payments"`
	Allocations []billingModel.PaymentAllocationModel  `json:"allocations"`
}

/* =========================
   Service
========================= */

type BackupService struct {
	Store  store.Store
	Recalc *billingService.Recalculator
}

func NewBackupService(s store.Store, r *billingService.Recalculator) *BackupService {
	return &BackupService{Store: s, Recalc: r}
}

// Export serializes every collection into one JSON document tagged with the
// app and data-schema versions.
func (svc *BackupService) Export(ctx context.Context) ([]byte, error) {
	doc := BackupDocument{
		AppVersion:    AppVersion,
		SchemaVersion: SchemaVersion,
		ExportedAt:    time.Now().UTC(),
	}

	clients, err := svc.Store.Clients().List(ctx)
	if err != nil {
		return nil, err
	}
	doc.Clients = clients

	for i := range clients {
		id := clients[i].ClientID

		templates, err := svc.Store.Templates().ListByClient(ctx, id)
		if err != nil {
			return nil, err
		}
		doc.Templates = append(doc.Templates, templates...)
		for j := range templates {
			rules, err := svc.Store.Rules().ListByTemplate(ctx, templates[j].ScheduleTemplateID)
			if err != nil {
				return nil, err
			}
			doc.Rules = append(doc.Rules, rules...)
		}

		sessions, err := svc.Store.Sessions().ListByClient(ctx, id, store.SessionFilter{})
		if err != nil {
			return nil, err
		}
		doc.Sessions = append(doc.Sessions, sessions...)

		packages, err := svc.Store.Packages().ListByClient(ctx, id)
		if err != nil {
			return nil, err
		}
		doc.Packages = append(doc.Packages, packages...)

		payments, err := svc.Store.Payments().ListByClient(ctx, id)
		if err != nil {
			return nil, err
		}
		doc.Payments = append(doc.Payments, payments...)

		allocations, err := svc.Store.Allocations().ListByClient(ctx, id)
		if err != nil {
			return nil, err
		}
		doc.Allocations = append(doc.Allocations, allocations...)
	}

	return sonic.Marshal(doc)
}

// Restore merges a backup by id: existing rows keep the document's original
// creation timestamp and get a refreshed update timestamp. Documents from a
// newer schema are rejected; older ones run the transformer chain first.
// Derived views are repaired with a full recalculation at the end.
func (svc *BackupService) Restore(ctx context.Context, data []byte) error {
	var raw map[string]any
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("malformed backup document: %w", err)
	}

	version := 0
	if v, ok := raw["schema_version"].(float64); ok {
		version = int(v)
	}
	if version > SchemaVersion {
		return fmt.Errorf("document schema v%d, supported up to v%d: %w", version, SchemaVersion, ErrSchemaTooNew)
	}
	for v := version; v < SchemaVersion; v++ {
		migrate, ok := schemaMigrations[v]
		if !ok {
			return fmt.Errorf("no migration from backup schema v%d", v)
		}
		raw = migrate(raw)
	}

	upgraded, err := sonic.Marshal(raw)
	if err != nil {
		return err
	}
	var doc BackupDocument
	if err := sonic.Unmarshal(upgraded, &doc); err != nil {
		return fmt.Errorf("malformed backup document: %w", err)
	}

	err = svc.Store.Transaction(ctx, func(tx store.Store) error {
		return mergeDocument(ctx, tx, &doc)
	})
	if err != nil {
		return err
	}
	return svc.Recalc.RecalculateAll(ctx)
}

/* =========================
   Merge
========================= */

func mergeDocument(ctx context.Context, tx store.Store, doc *BackupDocument) error {
	for i := range doc.Clients {
		m := doc.Clients[i]
		if _, err := tx.Clients().FindByID(ctx, m.ClientID); err == nil {
			if err := tx.Clients().Update(ctx, &m); err != nil {
				return err
			}
		} else if err := tx.Clients().Create(ctx, &m); err != nil {
			return err
		}
	}
	for i := range doc.Templates {
		m := doc.Templates[i]
		if _, err := tx.Templates().FindByID(ctx, m.ScheduleTemplateID); err == nil {
			if err := tx.Templates().Update(ctx, &m); err != nil {
				return err
			}
		} else if err := tx.Templates().Create(ctx, &m); err != nil {
			return err
		}
	}
	for i := range doc.Rules {
		m := doc.Rules[i]
		if _, err := tx.Rules().FindByID(ctx, m.ScheduleRuleID); err == nil {
			if err := tx.Rules().Update(ctx, &m); err != nil {
				return err
			}
		} else if err := tx.Rules().Create(ctx, &m); err != nil {
			return err
		}
	}
	for i := range doc.Sessions {
		m := doc.Sessions[i]
		if _, err := tx.Sessions().FindByID(ctx, m.CalendarSessionID); err == nil {
			if err := tx.Sessions().Update(ctx, &m); err != nil {
				return err
			}
		} else if err := tx.Sessions().Create(ctx, &m); err != nil {
			return err
		}
	}
	for i := range doc.Packages {
		m := doc.Packages[i]
		if _, err := tx.Packages().FindByID(ctx, m.PackageID); err == nil {
			if err := tx.Packages().Update(ctx, &m); err != nil {
				return err
			}
		} else if err := tx.Packages().Create(ctx, &m); err != nil {
			return err
		}
	}
	for i := range doc.Payments {
		m := doc.Payments[i]
		if _, err := tx.Payments().FindByID(ctx, m.PaymentID); err == nil {
			if err := tx.Payments().Update(ctx, &m); err != nil {
				return err
			}
		} else if err := tx.Payments().Create(ctx, &m); err != nil {
			return err
		}
	}
	for i := range doc.Allocations {
		m := doc.Allocations[i]
		if _, err := tx.Allocations().FindByID(ctx, m.PaymentAllocationID); err == nil {
			if err := tx.Allocations().Update(ctx, &m); err != nil {
				return err
			}
		} else if err := tx.Allocations().Create(ctx, &m); err != nil {
			return err
		}
	}
	return nil
}

/* =========================
   Schema migrations
========================= */

// Pure transformers, one per source version, applied in order up to the
// current schema.
var schemaMigrations = map[int]func(map[string]any) map[string]any{
	// v1 predates per-template horizons; rows get the default.
	1: func(doc map[string]any) map[string]any {
		if templates, ok := doc["templates"].([]any); ok {
			for _, t := range templates {
				if tm, ok := t.(map[string]any); ok {
					if _, ok := tm["schedule_template_horizon_days"]; !ok {
						tm["schedule_template_horizon_days"] = float64(schedModel.DefaultHorizonDays)
					}
				}
			}
		}
		doc["schema_version"] = float64(2)
		return doc
	},
}
