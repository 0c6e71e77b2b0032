package adoptions

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adoptly/adoptly-backend/internal/pets"
	"github.com/adoptly/adoptly-backend/pkg/db/models"
	"github.com/adoptly/adoptly-backend/pkg/enums"
	"github.com/adoptly/adoptly-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository constructs the adoption order ledger over the provided gorm DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, order *models.AdoptionOrder) (*models.AdoptionOrder, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindByID(ctx context.Context, orderID uuid.UUID) (*models.AdoptionOrder, error) {
	var order models.AdoptionOrder
	if err := r.db.WithContext(ctx).First(&order, "id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByGatewayOrderAndUser scopes the lookup to the buyer so one user can
// never complete another user's order, even with a valid gateway reference.
func (r *repository) FindByGatewayOrderAndUser(ctx context.Context, gatewayOrderID string, userID uuid.UUID) (*models.AdoptionOrder, error) {
	var order models.AdoptionOrder
	err := r.db.WithContext(ctx).
		Where("gateway_order_id = ? AND user_id = ?", gatewayOrderID, userID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) Update(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.AdoptionOrder{}).
		Where("id = ?", orderID).
		Updates(updates).Error
}

// UpdateIfNotPaid applies the updates only while the order has not reached
// paid. Paid is terminal: RowsAffected tells the caller whether the write
// landed or the row was already settled.
func (r *repository) UpdateIfNotPaid(ctx context.Context, orderID uuid.UUID, updates map[string]any) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.AdoptionOrder{}).
		Where("id = ? AND status <> ?", orderID, enums.OrderStatusPaid).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ListBuyerOrders returns the buyer's purchase history joined with pets,
// newest first with an id tiebreak.
func (r *repository) ListBuyerOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (OrdersPageDTO, error) {
	normalizedLimit := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)
	cursorValue := strings.TrimSpace(params.Cursor)
	decodedCursor, err := pagination.ParseCursor(cursorValue)
	if err != nil {
		return OrdersPageDTO{}, err
	}

	query := r.db.WithContext(ctx).
		Table("adoption_orders ao").
		Select("ao.id AS order_id, ao.amount_cents, ao.currency, ao.status, ao.gateway_order_id, ao.gateway_payment_id, ao.created_at AS order_created_at, ao.updated_at AS order_updated_at, p.*").
		Joins("JOIN pets p ON p.id = ao.pet_id").
		Where("ao.user_id = ?", userID)

	if decodedCursor != nil {
		query = query.Where("(ao.created_at < ?) OR (ao.created_at = ? AND ao.id < ?)", decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID)
	}
	query = query.Order("ao.created_at DESC").Order("ao.id DESC").Limit(limitWithBuffer)

	var records []buyerOrderRecord
	if err := query.Scan(&records).Error; err != nil {
		return OrdersPageDTO{}, err
	}

	resultRows := records
	nextCursor := ""
	if len(records) > normalizedLimit {
		resultRows = records[:normalizedLimit]
		last := resultRows[len(resultRows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.OrderCreatedAt,
			ID:        last.OrderID,
		})
	}

	items := make([]OrderDTO, 0, len(resultRows))
	for i := range resultRows {
		items = append(items, resultRows[i].toDTO())
	}

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.AdoptionOrder{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return OrdersPageDTO{}, err
	}

	prevCursor := ""
	if cursorValue != "" {
		prevCursor = cursorValue
	}

	return OrdersPageDTO{
		Items: items,
		Pagination: pagination.Meta{
			Total:   int(total),
			Current: cursorValue,
			Prev:    prevCursor,
			Next:    nextCursor,
		},
	}, nil
}

type buyerOrderRecord struct {
	OrderID          uuid.UUID         `gorm:"column:order_id"`
	AmountCents      int               `gorm:"column:amount_cents"`
	Currency         string            `gorm:"column:currency"`
	Status           enums.OrderStatus `gorm:"column:status"`
	GatewayOrderID   *string           `gorm:"column:gateway_order_id"`
	GatewayPaymentID *string           `gorm:"column:gateway_payment_id"`
	OrderCreatedAt   time.Time         `gorm:"column:order_created_at"`
	OrderUpdatedAt   time.Time         `gorm:"column:order_updated_at"`
	models.Pet       `gorm:"embedded"`
}

func (r *buyerOrderRecord) toDTO() OrderDTO {
	return OrderDTO{
		ID:               r.OrderID,
		Pet:              pets.FromModel(&r.Pet),
		AmountCents:      r.AmountCents,
		Amount:           pets.FormatPrice(r.AmountCents),
		Currency:         r.Currency,
		Status:           r.Status,
		GatewayOrderID:   r.GatewayOrderID,
		GatewayPaymentID: r.GatewayPaymentID,
		CreatedAt:        r.OrderCreatedAt,
		UpdatedAt:        r.OrderUpdatedAt,
	}
}
