package rate

import "errors"

var (
	// ErrDivisionByZero is returned when a fiat amount is converted with a zero price.
	ErrDivisionByZero = errors.New("rate: division by zero price")

	// ErrMissingTicker means the lookup holds no ticker for the asset address.
	ErrMissingTicker = errors.New("rate: no ticker for asset")

	// ErrUnparsablePrice means the ticker's price is not a decimal number.
	ErrUnparsablePrice = errors.New("rate: ticker price is not a decimal")

	// ErrNonPositivePrice means the ticker parsed but its price is zero or negative.
	ErrNonPositivePrice = errors.New("rate: ticker price is not positive")
)
