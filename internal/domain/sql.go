package domain

import "database/sql/driver"

// Enum columns are written as plain strings whatever the driver's parameter conversion does.

func (t RequestType) Value() (driver.Value, error)       { return string(t), nil }
func (s RequestStatus) Value() (driver.Value, error)     { return string(s), nil }
func (s BidStatus) Value() (driver.Value, error)         { return string(s), nil }
func (s BookingStatus) Value() (driver.Value, error)     { return string(s), nil }
func (r SenderRole) Value() (driver.Value, error)        { return string(r), nil }
func (t TransactionType) Value() (driver.Value, error)   { return string(t), nil }
func (s TransactionStatus) Value() (driver.Value, error) { return string(s), nil }
