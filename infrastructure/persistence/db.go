package persistence

import (
	"github.com/tooldex/tooldex/internal/database"
)

// AutoMigrate runs GORM auto migration for all entity models. The Postgres
// vector_embeddings table is not listed here — its vector column width is
// runtime-configurable, so the PostgresVectorStore manages it with raw DDL.
func AutoMigrate(db database.Database) error {
	models := []interface{}{
		&UserModel{},
		&GroupModel{},
		&ServerConfigModel{},
		&MarketServerModel{},
	}
	if db.IsSQLite() {
		models = append(models, &SQLiteEmbeddingModel{})
	}
	return db.GORM().AutoMigrate(models...)
}
