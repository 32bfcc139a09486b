package models

import "fmt"

// InvalidDateError 单元格日期无法解析
// Policy: the (row, field) pair is skipped and the run continues; a
// malformed cell must never abort processing of the remaining rows.
type InvalidDateError struct {
	PatientName string
	FieldID     string
	Value       string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q for patient %q field %q", e.Value, e.PatientName, e.FieldID)
}

// DeliveryError 通知发送失败
// Surfaced to the caller and logged; the run is already complete and no
// retry is attempted.
type DeliveryError struct {
	Provider  string
	Recipient string
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery via %s to %s failed: %v", e.Provider, e.Recipient, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
