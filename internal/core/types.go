package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ID is an opaque record identifier. Backends decide its concrete format.
type ID string

// String returns the identifier as a plain string.
func (id ID) String() string { return string(id) }

// IsZero reports whether the identifier is empty.
func (id ID) IsZero() bool { return id == "" }

// UnmarshalJSON accepts both JSON strings and numbers so that backups
// written with numeric identifiers still load.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s", data)
	}
	*id = ID(n.String())
	return nil
}

const dateLayout = "2006-01-02"

// Date is a calendar day in YYYY-MM-DD form. The zero value means "no date".
// Dates order lexicographically.
type Date string

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	return Date(t.Format(dateLayout))
}

// ParseDate parses a YYYY-MM-DD string. Longer ISO timestamps are truncated
// to their date part when a 'T' or a space follows the day. An empty string
// yields the zero Date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	day := s
	if n := len(dateLayout); len(s) > n && (s[n] == 'T' || s[n] == ' ') {
		day = s[:n]
	}
	t, err := time.Parse(dateLayout, day)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: use YYYY-MM-DD", s)
	}
	return DateOf(t), nil
}

// IsZero reports whether the date is absent.
func (d Date) IsZero() bool { return d == "" }

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool { return d < other }

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool { return d > other }

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	t, err := time.Parse(dateLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

// AddDays returns the date n days after d.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// MarshalJSON encodes the zero date as null.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(string(d))
}

// UnmarshalJSON accepts null, "" and YYYY-MM-DD (or a longer ISO timestamp).
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*d = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid date %s", data)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Amount is a monetary value. Decoding is lenient: missing, empty or
// non-numeric values become 0.
type Amount float64

// UnmarshalJSON implements lenient numeric decoding.
func (a *Amount) UnmarshalJSON(data []byte) error {
	*a = Amount(lenientNumber(data))
	return nil
}

// Quantity is a part count. Zero means "not given" and counts as 1.
type Quantity float64

// Effective returns the quantity used for totals.
func (q Quantity) Effective() float64 {
	if q == 0 {
		return 1
	}
	return float64(q)
}

// UnmarshalJSON implements lenient numeric decoding.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	*q = Quantity(lenientNumber(data))
	return nil
}

// ModelYear is a vehicle model year; 0 means unknown.
type ModelYear int

// UnmarshalJSON implements lenient numeric decoding.
func (y *ModelYear) UnmarshalJSON(data []byte) error {
	*y = ModelYear(int(lenientNumber(data)))
	return nil
}

func lenientNumber(data []byte) float64 {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		return 0
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return 0
		}
		s = strings.TrimSpace(str)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusCancelled}

var statusLabels = map[Status]string{
	StatusPending:    "Në Pritje",
	StatusInProgress: "Në Progres",
	StatusCompleted:  "Përfunduar",
	StatusCancelled:  "Anuluar",
}

var statusAliases = map[string]Status{
	"pending":     StatusPending,
	"në pritje":   StatusPending,
	"in_progress": StatusInProgress,
	"in progress": StatusInProgress,
	"in-progress": StatusInProgress,
	"inprogress":  StatusInProgress,
	"në progres":  StatusInProgress,
	"completed":   StatusCompleted,
	"përfunduar":  StatusCompleted,
	"cancelled":   StatusCancelled,
	"canceled":    StatusCancelled,
	"anuluar":     StatusCancelled,
}

// ParseStatus resolves a wire value or a display label to a Status.
// An empty string resolves to StatusPending.
func ParseStatus(s string) (Status, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return StatusPending, nil
	}
	if st, ok := statusAliases[key]; ok {
		return st, nil
	}
	return "", fmt.Errorf("invalid status %q", s)
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the localized display label.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// UnmarshalJSON accepts wire values and display labels.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid status %s", data)
	}
	st, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// Customer is a garage client.
type Customer struct {
	ID      ID     `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Phone   string `json:"phone" yaml:"phone"`
	Email   string `json:"email" yaml:"email"`
	Address string `json:"address" yaml:"address"`
}

// Vehicle belongs to exactly one customer.
type Vehicle struct {
	ID         ID        `json:"id" yaml:"id"`
	CustomerID ID        `json:"customerId" yaml:"customerId"`
	Make       string    `json:"make" yaml:"make"`
	Model      string    `json:"model" yaml:"model"`
	Year       ModelYear `json:"year,omitempty" yaml:"year"`
	Plate      string    `json:"plate" yaml:"plate"`
	Color      string    `json:"color" yaml:"color"`
	VIN        string    `json:"vin,omitempty" yaml:"vin"`
}

// Label returns "Make Model".
func (v Vehicle) Label() string {
	return strings.TrimSpace(v.Make + " " + v.Model)
}

// Part is a line item inside a service.
type Part struct {
	Name      string   `json:"name" yaml:"name"`
	Qty       Quantity `json:"qty,omitempty" yaml:"qty"`
	CostPrice Amount   `json:"costPrice" yaml:"costPrice"`
	SellPrice Amount   `json:"sellPrice" yaml:"sellPrice"`
}

// ServiceLine is one order line: a service type, its labor and the parts used.
type ServiceLine struct {
	ServiceType string `json:"serviceType" yaml:"serviceType"`
	LaborPrice  Amount `json:"laborPrice" yaml:"laborPrice"`
	Parts       []Part `json:"parts" yaml:"parts"`
}

// Order is a service order. EndDate is set if and only if the order is completed.
type Order struct {
	ID         ID            `json:"id" yaml:"id"`
	CustomerID ID            `json:"customerId" yaml:"customerId"`
	VehicleID  ID            `json:"vehicleId" yaml:"vehicleId"`
	Status     Status        `json:"status" yaml:"status"`
	StartDate  Date          `json:"startDate" yaml:"startDate"`
	EndDate    Date          `json:"endDate" yaml:"endDate"`
	Paid       bool          `json:"paid" yaml:"paid"`
	Notes      string        `json:"notes" yaml:"notes"`
	Services   []ServiceLine `json:"services" yaml:"services"`
}

// Date returns the day the order is reported under: EndDate if set, else StartDate.
func (o Order) Date() Date {
	if !o.EndDate.IsZero() {
		return o.EndDate
	}
	return o.StartDate
}

// Clone returns a deep copy of the order.
func (o Order) Clone() Order {
	o.Services = cloneServices(o.Services)
	return o
}

func cloneServices(src []ServiceLine) []ServiceLine {
	if src == nil {
		return nil
	}
	out := make([]ServiceLine, len(src))
	for i, svc := range src {
		out[i] = svc
		if svc.Parts != nil {
			out[i].Parts = append([]Part(nil), svc.Parts...)
		}
	}
	return out
}

// CustomerPatch is a partial customer update; nil fields are left unchanged.
type CustomerPatch struct {
	Name    *string `json:"name,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Email   *string `json:"email,omitempty"`
	Address *string `json:"address,omitempty"`
}

// Apply returns c with the patch applied.
func (p CustomerPatch) Apply(c Customer) Customer {
	setString(&c.Name, p.Name)
	setString(&c.Phone, p.Phone)
	setString(&c.Email, p.Email)
	setString(&c.Address, p.Address)
	return c
}

// VehiclePatch is a partial vehicle update; nil fields are left unchanged.
type VehiclePatch struct {
	CustomerID *ID        `json:"customerId,omitempty"`
	Make       *string    `json:"make,omitempty"`
	Model      *string    `json:"model,omitempty"`
	Year       *ModelYear `json:"year,omitempty"`
	Plate      *string    `json:"plate,omitempty"`
	Color      *string    `json:"color,omitempty"`
	VIN        *string    `json:"vin,omitempty"`
}

// Apply returns v with the patch applied.
func (p VehiclePatch) Apply(v Vehicle) Vehicle {
	if p.CustomerID != nil {
		v.CustomerID = *p.CustomerID
	}
	setString(&v.Make, p.Make)
	setString(&v.Model, p.Model)
	if p.Year != nil {
		v.Year = *p.Year
	}
	setString(&v.Plate, p.Plate)
	setString(&v.Color, p.Color)
	setString(&v.VIN, p.VIN)
	return v
}

// OrderPatch is a partial order update. Services, when given, replace the
// whole list.
type OrderPatch struct {
	CustomerID *ID            `json:"customerId,omitempty"`
	VehicleID  *ID            `json:"vehicleId,omitempty"`
	Status     *Status        `json:"status,omitempty"`
	StartDate  *Date          `json:"startDate,omitempty"`
	EndDate    *Date          `json:"endDate,omitempty"`
	Paid       *bool          `json:"paid,omitempty"`
	Notes      *string        `json:"notes,omitempty"`
	Services   *[]ServiceLine `json:"services,omitempty"`
}

// Apply returns o with the patch applied. It does not enforce the
// completion date rule; see EnforceEndDate.
func (p OrderPatch) Apply(o Order) Order {
	o = o.Clone()
	if p.CustomerID != nil {
		o.CustomerID = *p.CustomerID
	}
	if p.VehicleID != nil {
		o.VehicleID = *p.VehicleID
	}
	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.StartDate != nil {
		o.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		o.EndDate = *p.EndDate
	}
	if p.Paid != nil {
		o.Paid = *p.Paid
	}
	setString(&o.Notes, p.Notes)
	if p.Services != nil {
		o.Services = cloneServices(*p.Services)
	}
	return o
}

// FullOrderPatch returns a patch that sets every field of o.
func FullOrderPatch(o Order) OrderPatch {
	o = o.Clone()
	return OrderPatch{
		CustomerID: &o.CustomerID,
		VehicleID:  &o.VehicleID,
		Status:     &o.Status,
		StartDate:  &o.StartDate,
		EndDate:    &o.EndDate,
		Paid:       &o.Paid,
		Notes:      &o.Notes,
		Services:   &o.Services,
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
