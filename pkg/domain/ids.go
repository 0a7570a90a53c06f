package domain

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/google/uuid"

	dErrors "farmshop/pkg/domain-errors"
)

// Typed identifiers. Each wraps a UUID so a ProductID can never be passed
// where an OrderID is expected. Construct via the Parse* functions at trust
// boundaries; the zero value is the nil UUID and means "unset".
type (
	UserID     uuid.UUID
	ProductID  uuid.UUID
	CategoryID uuid.UUID
	OrderID    uuid.UUID
	MessageID  uuid.UUID
	ImageID    uuid.UUID
)

func NewUserID() UserID         { return UserID(uuid.New()) }
func NewProductID() ProductID   { return ProductID(uuid.New()) }
func NewCategoryID() CategoryID { return CategoryID(uuid.New()) }
func NewOrderID() OrderID       { return OrderID(uuid.New()) }
func NewMessageID() MessageID   { return MessageID(uuid.New()) }
func NewImageID() ImageID       { return ImageID(uuid.New()) }

func ParseUserID(s string) (UserID, error)         { return parseID[UserID]("user id", s) }
func ParseProductID(s string) (ProductID, error)   { return parseID[ProductID]("product id", s) }
func ParseCategoryID(s string) (CategoryID, error) { return parseID[CategoryID]("category id", s) }
func ParseOrderID(s string) (OrderID, error)       { return parseID[OrderID]("order id", s) }
func ParseMessageID(s string) (MessageID, error)   { return parseID[MessageID]("message id", s) }
func ParseImageID(s string) (ImageID, error)       { return parseID[ImageID]("image id", s) }

const maxIDLength = 64

func parseID[T ~[16]byte](kind, s string) (T, error) {
	var zero T
	if strings.TrimSpace(s) == "" {
		return zero, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	if len(s) > maxIDLength {
		return zero, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return zero, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if u == uuid.Nil {
		return zero, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be nil")
	}
	return T(u), nil
}

func (id UserID) String() string     { return uuid.UUID(id).String() }
func (id ProductID) String() string  { return uuid.UUID(id).String() }
func (id CategoryID) String() string { return uuid.UUID(id).String() }
func (id OrderID) String() string    { return uuid.UUID(id).String() }
func (id MessageID) String() string  { return uuid.UUID(id).String() }
func (id ImageID) String() string    { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id ProductID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id CategoryID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id OrderID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id MessageID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id ImageID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id UserID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id ProductID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }
func (id CategoryID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id OrderID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }
func (id MessageID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }
func (id ImageID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error     { return unmarshalID((*[16]byte)(id), b) }
func (id *ProductID) UnmarshalText(b []byte) error  { return unmarshalID((*[16]byte)(id), b) }
func (id *CategoryID) UnmarshalText(b []byte) error { return unmarshalID((*[16]byte)(id), b) }
func (id *OrderID) UnmarshalText(b []byte) error    { return unmarshalID((*[16]byte)(id), b) }
func (id *MessageID) UnmarshalText(b []byte) error  { return unmarshalID((*[16]byte)(id), b) }
func (id *ImageID) UnmarshalText(b []byte) error    { return unmarshalID((*[16]byte)(id), b) }

func unmarshalID(dst *[16]byte, b []byte) error {
	var u uuid.UUID
	if err := u.UnmarshalText(b); err != nil {
		return fmt.Errorf("unmarshal id: %w", err)
	}
	*dst = u
	return nil
}

// Value and Scan let typed ids travel through database/sql directly.

func (id UserID) Value() (driver.Value, error)     { return uuid.UUID(id).Value() }
func (id ProductID) Value() (driver.Value, error)  { return uuid.UUID(id).Value() }
func (id CategoryID) Value() (driver.Value, error) { return uuid.UUID(id).Value() }
func (id OrderID) Value() (driver.Value, error)    { return uuid.UUID(id).Value() }
func (id MessageID) Value() (driver.Value, error)  { return uuid.UUID(id).Value() }
func (id ImageID) Value() (driver.Value, error)    { return uuid.UUID(id).Value() }

func (id *UserID) Scan(src any) error     { return scanID((*[16]byte)(id), src) }
func (id *ProductID) Scan(src any) error  { return scanID((*[16]byte)(id), src) }
func (id *CategoryID) Scan(src any) error { return scanID((*[16]byte)(id), src) }
func (id *OrderID) Scan(src any) error    { return scanID((*[16]byte)(id), src) }
func (id *MessageID) Scan(src any) error  { return scanID((*[16]byte)(id), src) }
func (id *ImageID) Scan(src any) error    { return scanID((*[16]byte)(id), src) }

func scanID(dst *[16]byte, src any) error {
	var u uuid.UUID
	if err := u.Scan(src); err != nil {
		return fmt.Errorf("scan id: %w", err)
	}
	*dst = u
	return nil
}
