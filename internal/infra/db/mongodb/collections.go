package mongodb

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// Nombres de colección compartidos entre agregados (populate y borrado en cascada).
const (
	BootcampsCollection = "bootcamps"
	CoursesCollection   = "courses"
	ReviewsCollection   = "reviews"
)

// IsDuplicateKey indica si err es una violación de índice único.
func IsDuplicateKey(err error) bool {
	return err != nil && mongo.IsDuplicateKeyError(err)
}

// IsNotFound traduce mongo.ErrNoDocuments.
func IsNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
