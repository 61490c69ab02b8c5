package transaction

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/MinterTeam/incentives-engine/core/code"
	"github.com/MinterTeam/incentives-engine/core/oracle"
	"github.com/MinterTeam/incentives-engine/core/types"
)

// collectPayment checks a payment offered for price and schedules its
// collection. Reference coin payments must match the price exactly; native
// coin payments are converted at the oracle price and only the required
// amount is collected.
func collectPayment(tx *Transaction, context *Context, price *big.Int, coin types.CoinID, offered *big.Int) *Response {
	if offered == nil || offered.Sign() <= 0 {
		return &Response{
			Code: code.InvalidPayment,
			Log:  "Payment amount is empty",
			Info: EncodeError(code.NewInvalidPayment(coin.String(), price.String(), "0")),
		}
	}

	switch coin {
	case types.ReferenceCoin:
		if offered.Cmp(price) != 0 {
			return &Response{
				Code: code.InvalidPayment,
				Log:  fmt.Sprintf("Payment must equal the package price %s, got %s", price, offered),
				Info: EncodeError(code.NewInvalidPayment(coin.String(), price.String(), offered.String())),
			}
		}
		context.collect(coin, tx.Sender, price)
		return nil
	case types.NativeCoin:
		if context.Oracle == nil {
			return &Response{
				Code: code.PriceUnavailable,
				Log:  "Price oracle is not configured",
				Info: EncodeError(code.NewPriceUnavailable("no oracle")),
			}
		}

		quote, err := context.Oracle.Price(context.Ctx)
		if err != nil {
			return priceErrorResponse(quote, err)
		}

		needed := oracle.NativeAmount(price, quote.Rate)
		if offered.Cmp(needed) < 0 {
			return &Response{
				Code: code.InsufficientPayment,
				Log:  fmt.Sprintf("Insufficient payment. Needed %s %s, got %s", needed, coin, offered),
				Info: EncodeError(code.NewInsufficientPayment(coin.String(), needed.String(), offered.String())),
			}
		}
		context.collect(coin, tx.Sender, needed)
		return nil
	}

	return &Response{
		Code: code.InvalidPayment,
		Log:  fmt.Sprintf("Coin %s is not accepted", coin),
		Info: EncodeError(code.NewInvalidPayment(coin.String(), price.String(), offered.String())),
	}
}

func priceErrorResponse(quote oracle.Price, err error) *Response {
	rate := ""
	if quote.Rate != nil {
		rate = quote.Rate.String()
	}

	switch {
	case errors.Is(err, oracle.ErrPriceOutOfBounds):
		return &Response{
			Code: code.PriceOutOfBounds,
			Log:  err.Error(),
			Info: EncodeError(code.NewPriceOutOfBounds(rate, err.Error())),
		}
	case errors.Is(err, oracle.ErrPriceStale):
		return &Response{
			Code: code.PriceStale,
			Log:  err.Error(),
			Info: EncodeError(code.NewPriceStale(rate, err.Error())),
		}
	}

	return &Response{
		Code: code.PriceUnavailable,
		Log:  err.Error(),
		Info: EncodeError(code.NewPriceUnavailable(err.Error())),
	}
}
