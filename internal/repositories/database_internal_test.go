package repositories

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_MissingRecordsAreNotLogged(t *testing.T) {
	var out bytes.Buffer
	db, err := open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()), newLogger(&out))
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	out.Reset()

	ctx := context.Background()
	_, err = NewGORMOrderRepository(db).GetByID(ctx, uuid.NewString())
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = NewGORMProductRepository(db).GetByID(ctx, uuid.NewString())
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = NewSessionStorage(db).Get("nope")
	assert.NoError(t, err)

	assert.Empty(t, out.String())
}

func TestOpen_ErrorsAreLogged(t *testing.T) {
	var out bytes.Buffer
	db, err := open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()), newLogger(&out))
	require.NoError(t, err)

	require.Error(t, db.Exec("SELECT * FROM no_such_table").Error)
	assert.Contains(t, out.String(), "no_such_table")
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("mysql", "dsn")
	assert.ErrorContains(t, err, "unsupported database driver")
}
