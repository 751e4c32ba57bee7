package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/camellia/internal/model"
)

const menuCUE = `package menu

product: P009: {
	name:        "Teh Tarik"
	price:       9000
	description: "Teh susu tarik"
	stock:       12
	category:    "MINUMAN"
}

product: P010: {
	name:     "Roti Bakar"
	price:    12500.5
	category: "SNACK"
}

user: kasir: {
	password: "rahasia"
	role:     "SELLER"
}
`

func TestLoadSource(t *testing.T) {
	result, errs := LoadSource("menu.cue", []byte(menuCUE))
	require.Empty(t, errs)
	require.NotNil(t, result)
	require.Len(t, result.Products, 2)
	require.Len(t, result.Users, 1)

	teh := result.Products[0]
	assert.Equal(t, "P009", teh.ID)
	assert.Equal(t, "Teh Tarik", teh.Name)
	assert.True(t, decimal.NewFromInt(9000).Equal(teh.Price))
	assert.Equal(t, 12, teh.Stock)
	assert.Equal(t, model.CategoryMinuman, teh.Category)

	roti := result.Products[1]
	assert.Equal(t, "", roti.Description, "description defaults to empty")
	assert.Equal(t, 0, roti.Stock, "stock defaults to zero")
	assert.True(t, decimal.RequireFromString("12500.5").Equal(roti.Price))

	assert.Equal(t, &model.User{Username: "kasir", Password: "rahasia", Role: model.RoleSeller}, result.Users[0])
}

func TestLoadSource_ExactPrice(t *testing.T) {
	src := `package menu

product: P011: {
	name:     "Kopi Luwak"
	price:    12345678.123456789012
	category: "MINUMAN"
}
`
	result, errs := LoadSource("menu.cue", []byte(src))
	require.Empty(t, errs)
	require.Len(t, result.Products, 1)
	assert.Equal(t, "12345678.123456789012", result.Products[0].Price.String())
}

func TestLoadSource_InvalidEntries(t *testing.T) {
	src := `package menu

product: P001: {
	name:     "Nasi Goreng"
	price:    15000
	category: "MAKANAN"
}

product: BAD1: {
	name:     "Minus"
	price:    -5
	category: "SNACK"
}

product: BAD2: {
	name:     "Dessert"
	price:    1000
	category: "DESSERT"
}

product: BAD3: {
	price:    1000
	category: "SNACK"
}

user: ghost: {
	password: ""
	role:     "BUYER"
}
`
	result, errs := LoadSource("menu.cue", []byte(src))
	require.NotNil(t, result)
	require.Len(t, result.Products, 1, "valid entries are still returned")
	assert.Equal(t, "P001", result.Products[0].ID)
	assert.Empty(t, result.Users)

	require.Len(t, errs, 4)
	var paths []string
	for _, err := range errs {
		var le *LoadError
		require.True(t, errors.As(err, &le), "want *LoadError, got %T", err)
		paths = append(paths, le.Path)
	}
	assert.Equal(t, []string{"product.BAD1", "product.BAD2", "product.BAD3", "user.ghost"}, paths)
}

func TestLoadSource_SyntaxError(t *testing.T) {
	result, errs := LoadSource("broken.cue", []byte("product: P1: {\n\tname: \n"))
	assert.Nil(t, result)
	require.Len(t, errs, 1)

	var le *LoadError
	require.True(t, errors.As(errs[0], &le))
	assert.True(t, le.Pos.IsValid())
	assert.Equal(t, "broken.cue", le.Pos.Filename())
	assert.Contains(t, le.Error(), "broken.cue:")
}

func TestLoadSource_NoEntries(t *testing.T) {
	_, errs := LoadSource("empty.cue", []byte("package menu\n"))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "no product or user entries")
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "menu.cue"), []byte(menuCUE), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "staff.cue"), []byte(`package menu

user: barista: {
	password: "kopi"
	role:     "SELLER"
}
`), 0o644))

	result, errs := LoadDir(dir)
	require.Empty(t, errs)
	assert.Equal(t, 2, result.FileCount)
	assert.Len(t, result.Products, 2)
	assert.Len(t, result.Users, 2)
}

func TestLoadDir_Errors(t *testing.T) {
	_, errs := LoadDir(filepath.Join(t.TempDir(), "missing"))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "not accessible")

	_, errs = LoadDir(t.TempDir())
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "no CUE files")

	file := filepath.Join(t.TempDir(), "menu.cue")
	require.NoError(t, os.WriteFile(file, []byte(menuCUE), 0o644))
	_, errs = LoadDir(file)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "not a directory")
}

func TestLoadError_Format(t *testing.T) {
	assert.Equal(t, "product.P1: bad", (&LoadError{Path: "product.P1", Message: "bad"}).Error())
	assert.Equal(t, "bad", (&LoadError{Message: "bad"}).Error())
}
