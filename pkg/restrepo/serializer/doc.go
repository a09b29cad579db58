// Package serializer converts DTOs to models and back, one field at a time.
package serializer
