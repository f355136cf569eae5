package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBuildPaymentInstructionsBankTransfer(t *testing.T) {
	total := decimal.NewFromInt(51800)
	in := BuildPaymentInstructions("bank_transfer", "ORD-250115-0042", total)

	assert.Equal(t, "ORD-250115-0042", in.Reference)
	assert.True(t, in.Amount.Equal(total))
	assert.NotEmpty(t, in.BankName)
	assert.NotEmpty(t, in.AccountHolder)
	assert.NotEmpty(t, in.AccountNumber)
	assert.NotEmpty(t, in.AccountAlias)
	assert.Contains(t, in.Note, "ORD-250115-0042")
	assert.Empty(t, in.MerchantCode)
}

func TestBuildPaymentInstructionsCashOnDelivery(t *testing.T) {
	total := decimal.NewFromInt(45000)
	in := BuildPaymentInstructions("cash_on_delivery", "ORD-250115-0007", total)

	assert.True(t, in.Amount.Equal(total))
	assert.Contains(t, in.Note, "45000.00")
	assert.Empty(t, in.BankName)
	assert.Empty(t, in.MerchantCode)
}

func TestBuildPaymentInstructionsRetailPayment(t *testing.T) {
	in := BuildPaymentInstructions("retail_payment", "ORD-250115-0042", decimal.NewFromInt(10200))

	assert.NotEmpty(t, in.MerchantCode)
	assert.Equal(t, "2501150042", in.CustomerCode, "customer code is the digits of the order number")
	assert.Contains(t, in.Note, in.MerchantCode)
	assert.Empty(t, in.AccountNumber)
}

func TestBuildPaymentInstructionsIsPure(t *testing.T) {
	a := BuildPaymentInstructions("bank_transfer", "ORD-250115-0001", decimal.NewFromInt(100))
	b := BuildPaymentInstructions("bank_transfer", "ORD-250115-0001", decimal.NewFromInt(100))
	assert.Equal(t, a, b)
}
