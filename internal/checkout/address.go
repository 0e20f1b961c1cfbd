package checkout

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/parampare/storefront/internal/store"
	apperrors "github.com/parampare/storefront/pkg/errors"
	"github.com/parampare/storefront/pkg/validator"
)

// Address is a saved shipping address.
type Address struct {
	ID        string `json:"id"`
	FullName  string `json:"fullName"`
	Phone     string `json:"phone"`
	Street    string `json:"street"`
	Landmark  string `json:"landmark,omitempty"`
	City      string `json:"city"`
	State     string `json:"state"`
	Pincode   string `json:"pincode"`
	IsDefault bool   `json:"isDefault"`
}

// AddressInput are the address form fields. Validation failures carry
// per-field messages for inline display.
type AddressInput struct {
	FullName string `json:"fullName" validate:"required,min=2"`
	Phone    string `json:"phone" validate:"required,len=10,numeric"`
	Street   string `json:"street" validate:"required,min=5"`
	Landmark string `json:"landmark"`
	City     string `json:"city" validate:"required"`
	State    string `json:"state" validate:"required"`
	Pincode  string `json:"pincode" validate:"required,len=6,numeric"`
}

// AddressBook manages saved addresses in the local store. The web client left
// two generations of the address key behind; reads migrate the legacy key
// into the current one once.
type AddressBook struct {
	store  store.Store
	logger *slog.Logger
}

// NewAddressBook creates an address book over the given store.
func NewAddressBook(st store.Store, logger *slog.Logger) *AddressBook {
	return &AddressBook{store: st, logger: logger}
}

// List returns all saved addresses.
func (b *AddressBook) List(ctx context.Context) ([]Address, error) {
	addresses := []Address{}
	err := b.store.Get(ctx, store.KeyAddresses, &addresses)
	if err == nil {
		return addresses, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.Wrap(err, "read addresses")
	}

	// Migrate the legacy key if present.
	if err := store.GetOr(ctx, b.store, store.KeyLegacyAddresses, &addresses); err != nil {
		return nil, apperrors.Wrap(err, "read legacy addresses")
	}
	if len(addresses) > 0 {
		if err := b.store.Set(ctx, store.KeyAddresses, addresses); err != nil {
			return nil, apperrors.Wrap(err, "migrate addresses")
		}
		if err := b.store.Delete(ctx, store.KeyLegacyAddresses); err != nil {
			b.logger.WarnContext(ctx, "failed to drop legacy address key",
				slog.String("error", err.Error()),
			)
		}
	}
	return addresses, nil
}

// Add validates and saves a new address. The first address becomes the default.
func (b *AddressBook) Add(ctx context.Context, input AddressInput) (*Address, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	addresses, err := b.List(ctx)
	if err != nil {
		return nil, err
	}

	addr := Address{
		ID:        uuid.New().String(),
		FullName:  input.FullName,
		Phone:     input.Phone,
		Street:    input.Street,
		Landmark:  input.Landmark,
		City:      input.City,
		State:     input.State,
		Pincode:   input.Pincode,
		IsDefault: len(addresses) == 0,
	}
	addresses = append(addresses, addr)

	if err := b.store.Set(ctx, store.KeyAddresses, addresses); err != nil {
		return nil, apperrors.Wrap(err, "write addresses")
	}
	return &addr, nil
}

// Get returns the address with the given id.
func (b *AddressBook) Get(ctx context.Context, id string) (*Address, error) {
	addresses, err := b.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range addresses {
		if addresses[i].ID == id {
			return &addresses[i], nil
		}
	}
	return nil, apperrors.NotFound("address", id)
}

// Default returns the default address, or the first one when no default is
// flagged.
func (b *AddressBook) Default(ctx context.Context) (*Address, error) {
	addresses, err := b.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(addresses) == 0 {
		return nil, apperrors.NotFound("address", "default")
	}
	for i := range addresses {
		if addresses[i].IsDefault {
			return &addresses[i], nil
		}
	}
	return &addresses[0], nil
}

// Remove deletes the address with the given id. If the default address is
// removed, the first remaining address becomes the default.
func (b *AddressBook) Remove(ctx context.Context, id string) error {
	addresses, err := b.List(ctx)
	if err != nil {
		return err
	}

	removedDefault := false
	kept := addresses[:0]
	for _, addr := range addresses {
		if addr.ID == id {
			removedDefault = addr.IsDefault
			continue
		}
		kept = append(kept, addr)
	}
	if removedDefault && len(kept) > 0 {
		kept[0].IsDefault = true
	}

	if err := b.store.Set(ctx, store.KeyAddresses, kept); err != nil {
		return apperrors.Wrap(err, "write addresses")
	}
	return nil
}

// SetDefault flags the given address as the default.
func (b *AddressBook) SetDefault(ctx context.Context, id string) error {
	addresses, err := b.List(ctx)
	if err != nil {
		return err
	}

	found := false
	for i := range addresses {
		addresses[i].IsDefault = addresses[i].ID == id
		if addresses[i].IsDefault {
			found = true
		}
	}
	if !found {
		return apperrors.NotFound("address", id)
	}

	if err := b.store.Set(ctx, store.KeyAddresses, addresses); err != nil {
		return apperrors.Wrap(err, "write addresses")
	}
	return nil
}
