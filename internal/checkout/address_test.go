package checkout

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parampare/storefront/internal/store"
	memorystore "github.com/parampare/storefront/internal/store/memory"
	apperrors "github.com/parampare/storefront/pkg/errors"
	pkgvalidator "github.com/parampare/storefront/pkg/validator"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validInput() AddressInput {
	return AddressInput{
		FullName: "Meera Raghavan",
		Phone:    "9876543210",
		Street:   "12 Temple Street",
		City:     "Chennai",
		State:    "Tamil Nadu",
		Pincode:  "600004",
	}
}

func TestAddFirstAddressBecomesDefault(t *testing.T) {
	book := NewAddressBook(memorystore.New(), testLogger())
	ctx := context.Background()

	first, err := book.Add(ctx, validInput())
	require.NoError(t, err)
	assert.True(t, first.IsDefault)
	assert.NotEmpty(t, first.ID)

	second, err := book.Add(ctx, validInput())
	require.NoError(t, err)
	assert.False(t, second.IsDefault)

	addresses, err := book.List(ctx)
	require.NoError(t, err)
	assert.Len(t, addresses, 2)
}

func TestAddValidatesFields(t *testing.T) {
	book := NewAddressBook(memorystore.New(), testLogger())

	input := validInput()
	input.Phone = "123"
	input.Pincode = "60000x"

	_, err := book.Add(context.Background(), input)
	require.Error(t, err)

	var verr *pkgvalidator.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields(), "Phone")
	assert.Contains(t, verr.Fields(), "Pincode")

	addresses, err := book.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, addresses)
}

func TestDefaultFallsBackToFirst(t *testing.T) {
	book := NewAddressBook(memorystore.New(), testLogger())
	ctx := context.Background()

	_, err := book.Default(ctx)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	first, err := book.Add(ctx, validInput())
	require.NoError(t, err)

	def, err := book.Default(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, def.ID)
}

func TestRemoveDefaultPromotesFirstRemaining(t *testing.T) {
	book := NewAddressBook(memorystore.New(), testLogger())
	ctx := context.Background()

	first, err := book.Add(ctx, validInput())
	require.NoError(t, err)
	second, err := book.Add(ctx, validInput())
	require.NoError(t, err)

	require.NoError(t, book.Remove(ctx, first.ID))

	def, err := book.Default(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, def.ID)
	assert.True(t, def.IsDefault)
}

func TestSetDefaultMovesFlag(t *testing.T) {
	book := NewAddressBook(memorystore.New(), testLogger())
	ctx := context.Background()

	_, err := book.Add(ctx, validInput())
	require.NoError(t, err)
	second, err := book.Add(ctx, validInput())
	require.NoError(t, err)

	require.NoError(t, book.SetDefault(ctx, second.ID))

	addresses, err := book.List(ctx)
	require.NoError(t, err)
	for _, addr := range addresses {
		assert.Equal(t, addr.ID == second.ID, addr.IsDefault)
	}

	assert.ErrorIs(t, book.SetDefault(ctx, "ghost"), apperrors.ErrNotFound)
}

func TestGetUnknownAddress(t *testing.T) {
	book := NewAddressBook(memorystore.New(), testLogger())

	_, err := book.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListMigratesLegacyKeyOnce(t *testing.T) {
	st := memorystore.New()
	ctx := context.Background()

	legacy := []Address{{ID: "a1", FullName: "Meera", IsDefault: true}}
	require.NoError(t, st.Set(ctx, store.KeyLegacyAddresses, legacy))

	book := NewAddressBook(st, testLogger())

	addresses, err := book.List(ctx)
	require.NoError(t, err)
	require.Len(t, addresses, 1)
	assert.Equal(t, "a1", addresses[0].ID)

	// The legacy key is gone and the current key holds the data.
	var dst []Address
	assert.ErrorIs(t, st.Get(ctx, store.KeyLegacyAddresses, &dst), store.ErrNotFound)
	require.NoError(t, st.Get(ctx, store.KeyAddresses, &dst))
	assert.Len(t, dst, 1)
}
