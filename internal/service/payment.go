package service

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shopcore/storefront/internal/entity"
)

// Static payment details shown to customers. These are display-only; actual
// settlement is outside this system.
const (
	bankName          = "Banco de la Plaza"
	bankAccountHolder = "Shopcore Storefront S.A."
	bankAccountNumber = "0170099220000067797370"
	bankAccountAlias  = "SHOPCORE.TIENDA"
	retailMerchant    = "78421"
)

// PaymentInstructions is the method-specific payload returned with a newly
// created order. Fields that do not apply to the method are omitted.
type PaymentInstructions struct {
	Method        entity.PaymentMethod `json:"method"`
	Amount        decimal.Decimal      `json:"amount"`
	Reference     string               `json:"reference"`
	BankName      string               `json:"bank_name,omitempty"`
	AccountHolder string               `json:"account_holder,omitempty"`
	AccountNumber string               `json:"account_number,omitempty"`
	AccountAlias  string               `json:"account_alias,omitempty"`
	MerchantCode  string               `json:"merchant_code,omitempty"`
	CustomerCode  string               `json:"customer_code,omitempty"`
	Note          string               `json:"note"`
}

// BuildPaymentInstructions maps a payment method to its static instruction
// set. Pure function: no I/O, no side effects.
func BuildPaymentInstructions(method entity.PaymentMethod, orderNumber string, total decimal.Decimal) PaymentInstructions {
	instructions := PaymentInstructions{
		Method:    method,
		Amount:    total,
		Reference: orderNumber,
	}

	switch method {
	case entity.BankTransfer:
		instructions.BankName = bankName
		instructions.AccountHolder = bankAccountHolder
		instructions.AccountNumber = bankAccountNumber
		instructions.AccountAlias = bankAccountAlias
		instructions.Note = "Transfer the exact amount and include the reference " + orderNumber +
			" in the transfer description. The order ships once the payment is verified."
	case entity.CashOnDelivery:
		instructions.Note = "Pay " + total.StringFixed(2) + " in cash when the order arrives. " +
			"Please have the exact amount ready for the courier."
	case entity.RetailPayment:
		instructions.MerchantCode = retailMerchant
		instructions.CustomerCode = customerCode(orderNumber)
		instructions.Note = "Pay at any retail payment point using merchant code " + retailMerchant +
			" and your customer code. Keep the receipt until the order is confirmed."
	}

	return instructions
}

// customerCode derives the retail-payment customer code from the digits of
// the order number (e.g. ORD-250115-0042 -> 2501150042).
func customerCode(orderNumber string) string {
	var b strings.Builder
	for _, r := range orderNumber {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
