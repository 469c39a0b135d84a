package models

import "time"

// Schema is the top of the metadata tree: Schema -> Table -> Field.
// Policies reference schema/table ids by value, so deleting metadata
// does not cascade into the policy set.
type Schema struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:200;not null" json:"name"`
	Description *string   `gorm:"size:500" json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Tables []Table `gorm:"foreignKey:SchemaID" json:"tables,omitempty"`
}

type Table struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	Description *string   `gorm:"size:500" json:"description"`
	SchemaID    int64     `gorm:"index;not null" json:"schemaId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Fields []Field `gorm:"foreignKey:TableID" json:"fields,omitempty"`
}

type Field struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	DataType    string    `gorm:"size:100;not null" json:"dataType"`
	Description *string   `gorm:"size:500" json:"description"`
	TableID     int64     `gorm:"index;not null" json:"tableId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
