package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDBConfig_DriverName(t *testing.T) {
	cases := map[string]string{"": "postgres", "postgres": "postgres", "pq": "postgres", "pgx": "pgx"}
	for in, want := range cases {
		got, err := (&DBConfig{Driver: in}).DriverName()
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := (&DBConfig{Driver: "mysql"}).DriverName()
	assert.Error(t, err)
}

func TestGetConfig(t *testing.T) {
	defer viper.Reset()
	viper.Reset()
	viper.Set("database.driver", "pgx")
	viper.Set("database.name", "chat")

	cfg := GetConfig()
	assert.Equal(t, "pgx", cfg.Driver)
	assert.Equal(t, "host=localhost port=5432 user=postgres password=password dbname=chat sslmode=disable", cfg.DSN())
}

func TestSchema_Ensure(t *testing.T) {
	t.Run("runs statements once", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		for range schemaStatements {
			mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
		}

		schema := NewSchema(db)
		assert.NoError(t, schema.Ensure(context.Background()))
		assert.NoError(t, schema.Ensure(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("remembers failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("CREATE TABLE IF NOT EXISTS link_tokens").WillReturnError(errors.New("permission denied"))

		schema := NewSchema(db)
		assert.Error(t, schema.Ensure(context.Background()))
		assert.Error(t, schema.Ensure(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
