package metadata

import (
	"errors"

	"gorm.io/gorm"

	"datagate/internal/models"
)

var ErrNotFound = errors.New("schema not found")

// SchemaUpload is the admin-facing payload for loading a schema
// dictionary: one schema with its tables and fields in a single shot.
type SchemaUpload struct {
	Name        string        `json:"name" binding:"required"`
	Description *string       `json:"description"`
	Tables      []TableUpload `json:"tables" binding:"required,dive"`
}

type TableUpload struct {
	Name        string        `json:"name" binding:"required"`
	Description *string       `json:"description"`
	Fields      []FieldUpload `json:"fields" binding:"required,dive"`
}

type FieldUpload struct {
	Name        string  `json:"name" binding:"required"`
	DataType    string  `json:"dataType" binding:"required"`
	Description *string `json:"description"`
}

// Store holds the Schema -> Table -> Field metadata tree.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// CreateSchema inserts the whole tree in one transaction so a half
// uploaded dictionary never becomes visible.
func (s *Store) CreateSchema(up SchemaUpload) (*models.Schema, error) {
	schema := models.Schema{
		Name:        up.Name,
		Description: up.Description,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&schema).Error; err != nil {
			return err
		}
		for _, t := range up.Tables {
			table := models.Table{
				Name:        t.Name,
				Description: t.Description,
				SchemaID:    schema.ID,
			}
			if err := tx.Create(&table).Error; err != nil {
				return err
			}
			for _, f := range t.Fields {
				field := models.Field{
					Name:        f.Name,
					DataType:    f.DataType,
					Description: f.Description,
					TableID:     table.ID,
				}
				if err := tx.Create(&field).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &schema, nil
}

func (s *Store) AllSchemas() ([]models.Schema, error) {
	var schemas []models.Schema
	err := s.db.Find(&schemas).Error
	return schemas, err
}

// SchemaWithTables loads a schema with its full table/field tree.
func (s *Store) SchemaWithTables(id int64) (*models.Schema, error) {
	var schema models.Schema
	err := s.db.Preload("Tables.Fields").First(&schema, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &schema, nil
}

func (s *Store) TablesBySchema(schemaID int64) ([]models.Table, error) {
	var tables []models.Table
	err := s.db.Where("schema_id = ?", schemaID).Find(&tables).Error
	return tables, err
}

func (s *Store) FieldsByTable(tableID int64) ([]models.Field, error) {
	var fields []models.Field
	err := s.db.Where("table_id = ?", tableID).Find(&fields).Error
	return fields, err
}
