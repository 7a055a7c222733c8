package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPendingPayment       OrderStatus = "PENDING_PAYMENT"
	StatusPendingRedeem        OrderStatus = "PENDING_REDEEM"
	StatusAwaitingConfirmation OrderStatus = "AWAITING_CONFIRMATION"
	StatusPreparing            OrderStatus = "PREPARING"
	StatusCompleted            OrderStatus = "COMPLETED"
	StatusExpired              OrderStatus = "EXPIRED"
	StatusCancelled            OrderStatus = "CANCELLED"
)

// Label returns the human-facing text for a status. The server may send
// statuses this client version does not know; those render with a generic
// fallback instead of failing.
func (s OrderStatus) Label() string {
	switch s {
	case StatusPendingPayment:
		return "Ödeme Bekleniyor"
	case StatusPendingRedeem:
		return "Teslim Bekliyor"
	case StatusAwaitingConfirmation:
		return "Onay Bekliyor"
	case StatusPreparing:
		return "Hazırlanıyor"
	case StatusCompleted:
		return "Tamamlandı"
	case StatusExpired:
		return "Süresi Doldu"
	case StatusCancelled:
		return "İptal Edildi"
	default:
		return "Bilinmeyen Durum"
	}
}

func (s OrderStatus) Color() string {
	switch s {
	case StatusPendingPayment:
		return "#FFA500"
	case StatusPendingRedeem:
		return "#2E86DE"
	case StatusAwaitingConfirmation:
		return "#8E44AD"
	case StatusPreparing:
		return "#F39C12"
	case StatusCompleted:
		return "#27AE60"
	case StatusExpired:
		return "#95A5A6"
	case StatusCancelled:
		return "#C0392B"
	default:
		return "#7F8C8D"
	}
}

func (s OrderStatus) Known() bool {
	switch s {
	case StatusPendingPayment, StatusPendingRedeem, StatusAwaitingConfirmation,
		StatusPreparing, StatusCompleted, StatusExpired, StatusCancelled:
		return true
	default:
		return false
	}
}

type ListType string

const (
	ListAvailable ListType = "available"
	ListCompleted ListType = "completed"
)

type TimeFilter string

const (
	FilterDaily   TimeFilter = "daily"
	FilterWeekly  TimeFilter = "weekly"
	FilterMonthly TimeFilter = "monthly"
	FilterGeneral TimeFilter = "general"
)

type OrderItem struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size"`
	Extras    string          `json:"extras,omitempty"`
	ImageURL  string          `json:"imageUrl,omitempty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"totalLinePrice"`
}

type Order struct {
	ID             string          `json:"_id"`
	OrderCode      string          `json:"orderId"`
	Status         OrderStatus     `json:"status"`
	CreatedAt      time.Time       `json:"orderDate"`
	TotalPrice     decimal.Decimal `json:"totalPrice"`
	RecipientName  string          `json:"customerName"`
	RecipientPhone string          `json:"customerPhone,omitempty"`
	Items          []OrderItem     `json:"items,omitempty"`
}

// SummaryData describes the whole filtered order set, not just one page.
type SummaryData struct {
	TotalRevenue    decimal.Decimal `json:"totalRevenue"`
	TotalOrders     int             `json:"totalOrders"`
	CompletedOrders int             `json:"completedOrders"`
}

type PaginationMeta struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	Total       int `json:"total"`
	Limit       int `json:"limit"`
}

// OrderFeedPage is the result of one list fetch. Items keep server order.
type OrderFeedPage struct {
	Items      []Order        `json:"data"`
	Summary    SummaryData    `json:"summary"`
	Pagination PaginationMeta `json:"pagination"`
}

// OrderDetail is the richer projection of an order, fetched only when a
// user opens its detail view. Shape follows the current detail payload
// (header / recipient / items / pricing sections).
type OrderDetail struct {
	Header    DetailHeader    `json:"headerInfo"`
	Recipient DetailRecipient `json:"recipientInfo"`
	Items     []OrderItem     `json:"items"`
	Pricing   DetailPricing   `json:"pricingInfo"`
}

type DetailHeader struct {
	OrderCode string      `json:"orderId"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"orderDate"`
}

type DetailRecipient struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type DetailPricing struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	Discount     decimal.Decimal `json:"discount"`
	CampaignName string          `json:"campaignName,omitempty"`
	Total        decimal.Decimal `json:"total"`
}

// ConfirmationPayload is what a successful redemption hands back for the
// receipt screen.
type ConfirmationPayload struct {
	RecipientName string          `json:"recipientName"`
	Items         []OrderItem     `json:"items"`
	OrderNote     string          `json:"orderNote,omitempty"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
}

type StoreRef struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

type StaffUser struct {
	ID        string     `json:"_id"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     string     `json:"email"`
	Stores    []StoreRef `json:"stores"`
}
