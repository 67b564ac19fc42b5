package api

import (
	"net/http"

	"course_sales/internal/sales"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// createSaleRequest is the POST /sales body. Fields are pointers so that
// missing and null values reach storage as NULL; an "id" key is not bound.
type createSaleRequest struct {
	Name     *string          `json:"name"`
	Course   *string          `json:"course"`
	Price    *decimal.Decimal `json:"price"`
	SaleDate *sales.Date      `json:"saleDate"`
}

func (r createSaleRequest) toSale() *sales.Sale {
	return &sales.Sale{
		Name:     r.Name,
		Course:   r.Course,
		Price:    r.Price,
		SaleDate: r.SaleDate,
	}
}

// salesHandler holds the sales service and implements HTTP handlers for sales operations.
type salesHandler struct {
	salesService *sales.Service
	logger       *zap.Logger
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(salesService *sales.Service, logger *zap.Logger) *salesHandler {
	return &salesHandler{
		salesService: salesService,
		logger:       logger,
	}
}

// handleCreateSale handles the POST /sales endpoint.
func (h *salesHandler) handleCreateSale(ctx *gin.Context) {
	var req createSaleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("failed to bind JSON request", zap.Error(err), zap.String("request_id", requestID(ctx)))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	sale, err := h.salesService.CreateSale(ctx.Request.Context(), req.toSale())
	if err != nil {
		if errors.Is(err, sales.ErrInvalidPrice) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": sales.ErrInvalidPrice.Error()})
			return
		}
		if errors.Is(err, sales.ErrConstraintViolation) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": sales.ErrConstraintViolation.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create sale"})
		return
	}

	ctx.JSON(http.StatusOK, sale)
}

// handleListSales handles the GET /sales endpoint.
func (h *salesHandler) handleListSales(ctx *gin.Context) {
	all, err := h.salesService.ListSales(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list sales"})
		return
	}

	ctx.JSON(http.StatusOK, all)
}
