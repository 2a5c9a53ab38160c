package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/cryptonite-hq/cryptonite-backend/pkg/config"
	pkgerrors "github.com/cryptonite-hq/cryptonite-backend/pkg/errors"
)

// Fees carries deployment-level pricing knobs parsed once at startup.
type Fees struct {
	setupFeePerDevice decimal.Decimal
}

// NewFees parses the configured hosting fee schedule.
func NewFees(cfg config.HostingConfig) (*Fees, error) {
	perDevice, err := decimal.NewFromString(cfg.SetupFeePerDevice)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parsing hosting setup fee")
	}
	if perDevice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "hosting setup fee cannot be negative")
	}
	return &Fees{setupFeePerDevice: perDevice}, nil
}

// SetupFeePerDevice returns the per-device hosting intake fee.
func (f *Fees) SetupFeePerDevice() decimal.Decimal {
	return f.setupFeePerDevice
}

// SetupFee quotes the one-time hosting intake fee for deviceCount machines.
func (f *Fees) SetupFee(deviceCount int) decimal.Decimal {
	if deviceCount <= 0 {
		return decimal.Zero
	}
	return f.setupFeePerDevice.Mul(decimal.NewFromInt(int64(deviceCount))).Round(2)
}
