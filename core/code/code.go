package code

import (
	"strconv"
)

// Codes for operation responses
const (
	// general and guard
	OK                      uint32 = 0
	InternalError           uint32 = 101
	InvariantViolation      uint32 = 102
	SystemPaused            uint32 = 103
	CircuitBreakerActivated uint32 = 104
	SameSlotReplay          uint32 = 105
	ReentrantCall           uint32 = 106
	NotAdmin                uint32 = 107
	DecodeError             uint32 = 108
	UnknownOperation        uint32 = 109
	InvalidAddress          uint32 = 110

	// registry
	AlreadyRegistered   uint32 = 201
	InvalidTier         uint32 = 202
	SelfSponsor         uint32 = 203
	SponsorNotEligible  uint32 = 204
	NotRegistered       uint32 = 205
	Blacklisted         uint32 = 206
	InvalidPayment      uint32 = 207
	InsufficientPayment uint32 = 208

	// withdrawal
	InvalidAmount              uint32 = 301
	InsufficientBalance        uint32 = 302
	ExceedsMaxSingleWithdrawal uint32 = 303
	DailyLimitExceeded         uint32 = 304
	GlobalDailyLimitExceeded   uint32 = 305
	InsufficientTreasury       uint32 = 306

	// distribution
	CycleNotDue          uint32 = 401
	PoolEmpty            uint32 = 402
	NoEligibleRecipients uint32 = 403
	UnknownPool          uint32 = 404

	// admin
	WrongThreshold      uint32 = 501
	WrongLimits         uint32 = 502
	AdminTargetNotFound uint32 = 503

	// external
	PriceUnavailable uint32 = 601
	PriceOutOfBounds uint32 = 602
	PriceStale       uint32 = 603
	TransferFailed   uint32 = 604
)

type internalError struct {
	Code  string `json:"code,omitempty"`
	Error string `json:"error,omitempty"`
}

func NewInternalError(err string) *internalError {
	return &internalError{Code: strconv.Itoa(int(InternalError)), Error: err}
}

type invariantViolation struct {
	Code  string `json:"code,omitempty"`
	Error string `json:"error,omitempty"`
}

func NewInvariantViolation(err string) *invariantViolation {
	return &invariantViolation{Code: strconv.Itoa(int(InvariantViolation)), Error: err}
}

type systemPaused struct {
	Code string `json:"code,omitempty"`
}

func NewSystemPaused() *systemPaused {
	return &systemPaused{Code: strconv.Itoa(int(SystemPaused))}
}

type circuitBreakerActivated struct {
	Code      string `json:"code,omitempty"`
	Moved     string `json:"moved,omitempty"`
	Threshold string `json:"threshold,omitempty"`
}

func NewCircuitBreakerActivated(moved string, threshold string) *circuitBreakerActivated {
	return &circuitBreakerActivated{Code: strconv.Itoa(int(CircuitBreakerActivated)), Moved: moved, Threshold: threshold}
}

type sameSlotReplay struct {
	Code   string `json:"code,omitempty"`
	Sender string `json:"sender,omitempty"`
	Slot   string `json:"slot,omitempty"`
}

func NewSameSlotReplay(sender string, slot string) *sameSlotReplay {
	return &sameSlotReplay{Code: strconv.Itoa(int(SameSlotReplay)), Sender: sender, Slot: slot}
}

type reentrantCall struct {
	Code string `json:"code,omitempty"`
}

func NewReentrantCall() *reentrantCall {
	return &reentrantCall{Code: strconv.Itoa(int(ReentrantCall))}
}

type notAdmin struct {
	Code   string `json:"code,omitempty"`
	Sender string `json:"sender,omitempty"`
}

func NewNotAdmin(sender string) *notAdmin {
	return &notAdmin{Code: strconv.Itoa(int(NotAdmin)), Sender: sender}
}

type decodeError struct {
	Code  string `json:"code,omitempty"`
	Error string `json:"error,omitempty"`
}

func NewDecodeError(err string) *decodeError {
	return &decodeError{Code: strconv.Itoa(int(DecodeError)), Error: err}
}

type unknownOperation struct {
	Code string `json:"code,omitempty"`
	Type string `json:"type,omitempty"`
}

func NewUnknownOperation(txType string) *unknownOperation {
	return &unknownOperation{Code: strconv.Itoa(int(UnknownOperation)), Type: txType}
}

type invalidAddress struct {
	Code    string `json:"code,omitempty"`
	Address string `json:"address,omitempty"`
}

func NewInvalidAddress(address string) *invalidAddress {
	return &invalidAddress{Code: strconv.Itoa(int(InvalidAddress)), Address: address}
}

type alreadyRegistered struct {
	Code    string `json:"code,omitempty"`
	Address string `json:"address,omitempty"`
	ID      string `json:"id,omitempty"`
}

func NewAlreadyRegistered(address string, id string) *alreadyRegistered {
	return &alreadyRegistered{Code: strconv.Itoa(int(AlreadyRegistered)), Address: address, ID: id}
}

type invalidTier struct {
	Code         string `json:"code,omitempty"`
	Level        string `json:"level,omitempty"`
	CurrentLevel string `json:"current_level,omitempty"`
	MaxLevel     string `json:"max_level,omitempty"`
}

func NewInvalidTier(level string, currentLevel string, maxLevel string) *invalidTier {
	return &invalidTier{Code: strconv.Itoa(int(InvalidTier)), Level: level, CurrentLevel: currentLevel, MaxLevel: maxLevel}
}

type selfSponsor struct {
	Code    string `json:"code,omitempty"`
	Address string `json:"address,omitempty"`
}

func NewSelfSponsor(address string) *selfSponsor {
	return &selfSponsor{Code: strconv.Itoa(int(SelfSponsor)), Address: address}
}

type sponsorNotEligible struct {
	Code    string `json:"code,omitempty"`
	Sponsor string `json:"sponsor,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

func NewSponsorNotEligible(sponsor string, reason string) *sponsorNotEligible {
	return &sponsorNotEligible{Code: strconv.Itoa(int(SponsorNotEligible)), Sponsor: sponsor, Reason: reason}
}

type notRegistered struct {
	Code    string `json:"code,omitempty"`
	Address string `json:"address,omitempty"`
}

func NewNotRegistered(address string) *notRegistered {
	return &notRegistered{Code: strconv.Itoa(int(NotRegistered)), Address: address}
}

type blacklisted struct {
	Code    string `json:"code,omitempty"`
	Address string `json:"address,omitempty"`
}

func NewBlacklisted(address string) *blacklisted {
	return &blacklisted{Code: strconv.Itoa(int(Blacklisted)), Address: address}
}

type invalidPayment struct {
	Code     string `json:"code,omitempty"`
	Coin     string `json:"coin,omitempty"`
	Expected string `json:"expected,omitempty"`
	Got      string `json:"got,omitempty"`
}

func NewInvalidPayment(coin string, expected string, got string) *invalidPayment {
	return &invalidPayment{Code: strconv.Itoa(int(InvalidPayment)), Coin: coin, Expected: expected, Got: got}
}

type insufficientPayment struct {
	Code        string `json:"code,omitempty"`
	Coin        string `json:"coin,omitempty"`
	NeededValue string `json:"needed_value,omitempty"`
	Got         string `json:"got,omitempty"`
}

func NewInsufficientPayment(coin string, neededValue string, got string) *insufficientPayment {
	return &insufficientPayment{Code: strconv.Itoa(int(InsufficientPayment)), Coin: coin, NeededValue: neededValue, Got: got}
}

type invalidAmount struct {
	Code    string `json:"code,omitempty"`
	Amount  string `json:"amount,omitempty"`
	Minimum string `json:"minimum,omitempty"`
}

func NewInvalidAmount(amount string, minimum string) *invalidAmount {
	return &invalidAmount{Code: strconv.Itoa(int(InvalidAmount)), Amount: amount, Minimum: minimum}
}

type insufficientBalance struct {
	Code        string `json:"code,omitempty"`
	Address     string `json:"address,omitempty"`
	NeededValue string `json:"needed_value,omitempty"`
	Balance     string `json:"balance,omitempty"`
}

func NewInsufficientBalance(address string, neededValue string, balance string) *insufficientBalance {
	return &insufficientBalance{Code: strconv.Itoa(int(InsufficientBalance)), Address: address, NeededValue: neededValue, Balance: balance}
}

type exceedsMaxSingleWithdrawal struct {
	Code    string `json:"code,omitempty"`
	Amount  string `json:"amount,omitempty"`
	Maximum string `json:"maximum,omitempty"`
}

func NewExceedsMaxSingleWithdrawal(amount string, maximum string) *exceedsMaxSingleWithdrawal {
	return &exceedsMaxSingleWithdrawal{Code: strconv.Itoa(int(ExceedsMaxSingleWithdrawal)), Amount: amount, Maximum: maximum}
}

type dailyLimitExceeded struct {
	Code      string `json:"code,omitempty"`
	Withdrawn string `json:"withdrawn,omitempty"`
	Amount    string `json:"amount,omitempty"`
	Limit     string `json:"limit,omitempty"`
}

func NewDailyLimitExceeded(withdrawn string, amount string, limit string) *dailyLimitExceeded {
	return &dailyLimitExceeded{Code: strconv.Itoa(int(DailyLimitExceeded)), Withdrawn: withdrawn, Amount: amount, Limit: limit}
}

func NewGlobalDailyLimitExceeded(withdrawn string, amount string, limit string) *dailyLimitExceeded {
	return &dailyLimitExceeded{Code: strconv.Itoa(int(GlobalDailyLimitExceeded)), Withdrawn: withdrawn, Amount: amount, Limit: limit}
}

type insufficientTreasury struct {
	Code        string `json:"code,omitempty"`
	NeededValue string `json:"needed_value,omitempty"`
	Treasury    string `json:"treasury,omitempty"`
}

func NewInsufficientTreasury(neededValue string, treasury string) *insufficientTreasury {
	return &insufficientTreasury{Code: strconv.Itoa(int(InsufficientTreasury)), NeededValue: neededValue, Treasury: treasury}
}

type cycleNotDue struct {
	Code     string `json:"code,omitempty"`
	Pool     string `json:"pool,omitempty"`
	NextTime string `json:"next_time,omitempty"`
	Now      string `json:"now,omitempty"`
}

func NewCycleNotDue(pool string, nextTime string, now string) *cycleNotDue {
	return &cycleNotDue{Code: strconv.Itoa(int(CycleNotDue)), Pool: pool, NextTime: nextTime, Now: now}
}

type poolError struct {
	Code string `json:"code,omitempty"`
	Pool string `json:"pool,omitempty"`
}

func NewPoolEmpty(pool string) *poolError {
	return &poolError{Code: strconv.Itoa(int(PoolEmpty)), Pool: pool}
}

func NewNoEligibleRecipients(pool string) *poolError {
	return &poolError{Code: strconv.Itoa(int(NoEligibleRecipients)), Pool: pool}
}

func NewUnknownPool(pool string) *poolError {
	return &poolError{Code: strconv.Itoa(int(UnknownPool)), Pool: pool}
}

type wrongValue struct {
	Code  string `json:"code,omitempty"`
	Field string `json:"field,omitempty"`
	Value string `json:"value,omitempty"`
}

func NewWrongThreshold(value string) *wrongValue {
	return &wrongValue{Code: strconv.Itoa(int(WrongThreshold)), Field: "threshold", Value: value}
}

func NewWrongLimits(field string, value string) *wrongValue {
	return &wrongValue{Code: strconv.Itoa(int(WrongLimits)), Field: field, Value: value}
}

type adminTargetNotFound struct {
	Code    string `json:"code,omitempty"`
	Address string `json:"address,omitempty"`
}

func NewAdminTargetNotFound(address string) *adminTargetNotFound {
	return &adminTargetNotFound{Code: strconv.Itoa(int(AdminTargetNotFound)), Address: address}
}

type priceError struct {
	Code   string `json:"code,omitempty"`
	Rate   string `json:"rate,omitempty"`
	Detail string `json:"detail,omitempty"`
}

func NewPriceUnavailable(detail string) *priceError {
	return &priceError{Code: strconv.Itoa(int(PriceUnavailable)), Detail: detail}
}

func NewPriceOutOfBounds(rate string, detail string) *priceError {
	return &priceError{Code: strconv.Itoa(int(PriceOutOfBounds)), Rate: rate, Detail: detail}
}

func NewPriceStale(rate string, detail string) *priceError {
	return &priceError{Code: strconv.Itoa(int(PriceStale)), Rate: rate, Detail: detail}
}

type transferFailed struct {
	Code  string `json:"code,omitempty"`
	From  string `json:"from,omitempty"`
	To    string `json:"to,omitempty"`
	Value string `json:"value,omitempty"`
	Error string `json:"error,omitempty"`
}

func NewTransferFailed(from string, to string, value string, err string) *transferFailed {
	return &transferFailed{Code: strconv.Itoa(int(TransferFailed)), From: from, To: to, Value: value, Error: err}
}
