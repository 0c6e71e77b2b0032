package models

import (
	"database/sql/driver"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// PhotoList stores photo URLs as a native text[] on Postgres and as the pq
// array literal in a plain text column on the sqlite test driver.
type PhotoList []string

func (p *PhotoList) Scan(src any) error {
	return (*pq.StringArray)(p).Scan(src)
}

func (p PhotoList) Value() (driver.Value, error) {
	return pq.StringArray(p).Value()
}

func (PhotoList) GormDataType() string {
	return "text"
}

func (PhotoList) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}
