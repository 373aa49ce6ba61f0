package dto

import (
	"time"

	"github.com/noah-isme/tutor-roster-api/internal/models"
)

// CreatePersonRequest defines the payload for adding someone to the roster.
type CreatePersonRequest struct {
	Role     models.PersonRole `json:"role" validate:"required,oneof=student tutor"`
	Name     string            `json:"name" validate:"required,max=120"`
	Phone    string            `json:"phone" validate:"required,numeric,min=3,max=20"`
	Email    string            `json:"email" validate:"required,email"`
	Address  string            `json:"address" validate:"required,max=255"`
	JoinDate string            `json:"joinDate" validate:"required"`
}

// UpdatePersonRequest edits contact fields. Ledgers are never touched here.
type UpdatePersonRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Phone   string `json:"phone" validate:"required,numeric,min=3,max=20"`
	Email   string `json:"email" validate:"required,email"`
	Address string `json:"address" validate:"required,max=255"`
}

// MarkAttendanceRequest carries a week marker such as 2024-03-W2.
type MarkAttendanceRequest struct {
	Week string `json:"week" validate:"required"`
}

// PaymentRequest carries a yyyy-MM month.
type PaymentRequest struct {
	Month string `json:"month" validate:"required"`
}

// PersonSummary is the list representation of a person.
type PersonSummary struct {
	ID            string            `json:"id"`
	Role          models.PersonRole `json:"role"`
	Name          string            `json:"name"`
	Phone         string            `json:"phone"`
	Email         string            `json:"email"`
	JoinDate      string            `json:"joinDate"`
	PaymentStatus string            `json:"paymentStatus"`
}

// PersonView is the detailed representation including both ledgers.
type PersonView struct {
	ID         string            `json:"id"`
	Role       models.PersonRole `json:"role"`
	Name       string            `json:"name"`
	Phone      string            `json:"phone"`
	Email      string            `json:"email"`
	Address    string            `json:"address"`
	JoinDate   string            `json:"joinDate"`
	Attendance *AttendanceView   `json:"attendance,omitempty"`
	Payments   PaymentView       `json:"payments"`
	Version    int               `json:"version"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// AttendanceView lists the attended weeks inside the current window.
type AttendanceView struct {
	JoinWeek    string   `json:"joinWeek"`
	CurrentWeek string   `json:"currentWeek"`
	Weeks       []string `json:"weeks"`
}

// PaymentRecord is one month of the payment ledger.
type PaymentRecord struct {
	Month string `json:"month"`
	Paid  bool   `json:"paid"`
}

// PaymentView summarises the payment ledger and its derived status.
type PaymentView struct {
	JoinMonth         string          `json:"joinMonth"`
	CurrentMonth      string          `json:"currentMonth"`
	Status            string          `json:"status"`
	FirstOverdueMonth string          `json:"firstOverdueMonth,omitempty"`
	UnpaidMonths      []string        `json:"unpaidMonths"`
	Records           []PaymentRecord `json:"records"`
}

// OverdueItem is one row of the overdue payments report.
type OverdueItem struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Role              models.PersonRole `json:"role"`
	Phone             string            `json:"phone"`
	FirstOverdueMonth string            `json:"firstOverdueMonth"`
	UnpaidMonths      []string          `json:"unpaidMonths"`
}
