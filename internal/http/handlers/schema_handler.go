package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"datagate/internal/metadata"
)

// ListSchemas returns every schema in the dictionary, without tables.
func ListSchemas(meta *metadata.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		schemas, err := meta.AllSchemas()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch schemas"})
			return
		}
		c.JSON(http.StatusOK, schemas)
	}
}

// CreateSchema uploads a schema dictionary (schema + tables + fields).
func CreateSchema(meta *metadata.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var up metadata.SchemaUpload
		if err := c.ShouldBindJSON(&up); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid schema data", "error": err.Error()})
			return
		}
		schema, err := meta.CreateSchema(up)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create schema"})
			return
		}
		c.JSON(http.StatusCreated, schema)
	}
}

// GetSchema returns one schema with its full table/field tree.
func GetSchema(meta *metadata.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid schema id"})
			return
		}
		schema, err := meta.SchemaWithTables(id)
		if errors.Is(err, metadata.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Schema not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch schema"})
			return
		}
		c.JSON(http.StatusOK, schema)
	}
}
