// Package odr persists one-definition-rule evidence across translation
// units: for every class/struct/union definition an analysis run sees,
// it records a {class-name, file, line, column, content-hash} tuple
// (spec.md §6) and, on request, compares every row recorded so far to
// find the same class name defined with two different bodies — the
// cross-TU ctuOneDefinitionRuleViolation scenario (spec.md §8 scenario
// 6). This is the engine's only persisted state; everything else is
// rebuilt fresh per translation unit.
package odr

import (
	"time"

	"gorm.io/datatypes"
)

// Member is one field of a recorded class definition, kept alongside
// the content hash so a reported violation can show which members
// actually disagree instead of only "the hash differs".
type Member struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ClassRecord is one translation unit's observation of a single class
// definition.
type ClassRecord struct {
	ID              string         `gorm:"primaryKey;type:varchar(36)"`
	RunID           string         `gorm:"type:varchar(36);index"`
	TranslationUnit string         `gorm:"type:text;not null"`
	ClassName       string         `gorm:"type:varchar(255);index;not null"`
	File            string         `gorm:"type:text;not null"`
	Line            int            `gorm:"not null"`
	Column          int            `gorm:"not null"`
	ContentHash     string         `gorm:"type:varchar(64);not null"`
	Members         datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt       time.Time      `gorm:"autoCreateTime"`
}

// TableName keeps the persisted name short and stable across schema
// changes to the Go struct.
func (ClassRecord) TableName() string { return "class_records" }
