package wallet

import (
	"time"

	walletv1 "github.com/Salbajnr/blocktradepro-engine/internal/domain/wallet/v1"
	"github.com/shopspring/decimal"
)

// row mirrors the wallets table.
type row struct {
	UserID   string
	Currency string

	Available string
	Reserved  string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r *row) toDomain() (*walletv1.Wallet, error) {
	available, err := decimal.NewFromString(r.Available)
	if err != nil {
		return nil, err
	}
	reserved, err := decimal.NewFromString(r.Reserved)
	if err != nil {
		return nil, err
	}

	return &walletv1.Wallet{
		UserID:    r.UserID,
		Currency:  r.Currency,
		Available: available,
		Reserved:  reserved,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}
