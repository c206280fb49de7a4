// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"

	accountstore "github.com/sainikhub/sainikhub/internal/app/store/accounts"
	applicationstore "github.com/sainikhub/sainikhub/internal/app/store/applications"
	departmentstore "github.com/sainikhub/sainikhub/internal/app/store/departments"
	schemestore "github.com/sainikhub/sainikhub/internal/app/store/schemes"
	sessionstore "github.com/sainikhub/sainikhub/internal/app/store/sessions"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each store's EnsureIndexes is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string

	if err := accountstore.New(db).EnsureIndexes(ctx); err != nil {
		problems = append(problems, "accounts: "+err.Error())
	}
	if err := departmentstore.New(db).EnsureIndexes(ctx); err != nil {
		problems = append(problems, "departments: "+err.Error())
	}
	if err := schemestore.New(db).EnsureIndexes(ctx); err != nil {
		problems = append(problems, "schemes: "+err.Error())
	}
	if err := applicationstore.New(db).EnsureIndexes(ctx); err != nil {
		problems = append(problems, "applications: "+err.Error())
	}
	if err := sessionstore.New(db).EnsureIndexes(ctx); err != nil {
		problems = append(problems, "sessions: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	logger.Info("database indexes ensured")
	return nil
}
