package entity

import "github.com/shopspring/decimal"

// Category agrupa artículos con los mismos requisitos de almacenamiento.
type Category struct {
	ID                  string
	CompanyID           string
	Name                string
	StorageTempMin      *decimal.Decimal // °C, nil = sin banda definida
	StorageTempMax      *decimal.Decimal
	LightSensitive      bool
	ColdChainCritical   bool
	ExpirationAlertDays int // 0 = usar DefaultExpirationAlertDays
}
