package project

import "errors"

var (
	ErrProjectNotFound    = errors.New("project not found")
	ErrItemNotFound       = errors.New("budget item not found")
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrAdvanceNotFound    = errors.New("advance not found")
	ErrExpenseNotFound    = errors.New("expense not found")
	ErrUnknownCategory    = errors.New("unknown budget category")
	ErrInvalidPaymentType = errors.New("invalid payment type")
	ErrInvalidStatus      = errors.New("invalid advance status")
)
