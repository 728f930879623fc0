// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dataset

import (
	"context"
	"database/sql"
	"strings"

	"github.com/juju/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

const (
	MySQLPrefix      = "mysql://"
	PostgresPrefix   = "postgres://"
	PostgreSQLPrefix = "postgresql://"
	SQLitePrefix     = "sqlite://"

	// DefaultQuery selects ratings from the table created by ImportDatabase.
	DefaultQuery = "SELECT user_id, item_id, rating FROM ratings"
)

// Rating is the table schema of ratings.
type Rating struct {
	UserId string  `gorm:"column:user_id;type:varchar(256);not null"`
	ItemId string  `gorm:"column:item_id;type:varchar(256);not null"`
	Rating float64 `gorm:"column:rating;not null"`
}

func (Rating) TableName() string {
	return "ratings"
}

// OpenDatabase connects to a database given by a URL with one of the
// mysql://, postgres://, postgresql:// or sqlite:// prefixes.
func OpenDatabase(path string) (*gorm.DB, error) {
	config := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if strings.HasPrefix(path, MySQLPrefix) {
		name := path[len(MySQLPrefix):]
		db, err := gorm.Open(mysql.Open(name), config)
		return db, errors.Trace(err)
	} else if strings.HasPrefix(path, PostgresPrefix) || strings.HasPrefix(path, PostgreSQLPrefix) {
		db, err := gorm.Open(postgres.Open(path), config)
		return db, errors.Trace(err)
	} else if strings.HasPrefix(path, SQLitePrefix) {
		name := path[len(SQLitePrefix):]
		conn, err := sql.Open("sqlite", name)
		if err != nil {
			return nil, errors.Trace(err)
		}
		db, err := gorm.Open(sqlite.Dialector{Conn: conn}, config)
		return db, errors.Trace(err)
	}
	return nil, errors.NotSupportedf("database %s", path)
}

// CloseDatabase releases the connection pool of db.
func CloseDatabase(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(sqlDB.Close())
}

// LoadDatabase loads ratings by a query returning user id, item id and rating
// columns in this order.
func LoadDatabase(ctx context.Context, db *gorm.DB, query string) ([]Row, error) {
	if query == "" {
		query = DefaultQuery
	}
	result, err := db.WithContext(ctx).Raw(query).Rows()
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer result.Close()
	var rows []Row
	for result.Next() {
		var (
			userId sql.NullString
			itemId sql.NullString
			rating sql.NullFloat64
		)
		if err = result.Scan(&userId, &itemId, &rating); err != nil {
			return nil, errors.Trace(err)
		}
		if !userId.Valid || !itemId.Valid || !rating.Valid {
			return nil, errors.NotValidf("null field at row %d", len(rows))
		}
		rows = append(rows, Row{
			UserId: userId.String,
			ItemId: itemId.String,
			Rating: float32(rating.Float64),
		})
	}
	if err = result.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	if err = ValidateRows(rows); err != nil {
		return nil, errors.Trace(err)
	}
	return rows, nil
}

// ImportDatabase creates the ratings table if not exists and inserts rows.
func ImportDatabase(ctx context.Context, db *gorm.DB, rows []Row, batchSize int) error {
	if err := ValidateRows(rows); err != nil {
		return errors.Trace(err)
	}
	tx := db.WithContext(ctx)
	if err := tx.AutoMigrate(&Rating{}); err != nil {
		return errors.Trace(err)
	}
	if len(rows) == 0 {
		return nil
	}
	records := make([]Rating, len(rows))
	for i, row := range rows {
		records[i] = Rating{UserId: row.UserId, ItemId: row.ItemId, Rating: float64(row.Rating)}
	}
	return errors.Trace(tx.CreateInBatches(records, batchSize).Error)
}
