package telemetry

import (
	"fmt"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/gorm"
)

// RegisterGormTracing adds a span to every GORM statement.
// Query parameters are left out of span attributes.
func RegisterGormTracing(db *gorm.DB, dbName string) error {
	plugin := otelgorm.NewPlugin(
		otelgorm.WithDBName(dbName),
		otelgorm.WithoutQueryVariables(),
	)
	if err := db.Use(plugin); err != nil {
		return fmt.Errorf("failed to register otelgorm plugin: %w", err)
	}
	return nil
}
