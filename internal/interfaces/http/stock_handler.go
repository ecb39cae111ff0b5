package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jcastellr/bodega-api/internal/application/dto"
	"github.com/jcastellr/bodega-api/internal/application/stock"
	"github.com/jcastellr/bodega-api/internal/domain/entity"
)

// StockHandler maneja las peticiones HTTP de stock (protegido).
type StockHandler struct {
	adjust   *stock.AdjustUseCase
	transfer *stock.TransferUseCase
	batch    *stock.BatchTransferUseCase
	query    *stock.QueryUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(adjust *stock.AdjustUseCase, transfer *stock.TransferUseCase, batch *stock.BatchTransferUseCase, query *stock.QueryUseCase) *StockHandler {
	return &StockHandler{adjust: adjust, transfer: transfer, batch: batch, query: query}
}

// Adjust godoc
// @Summary      Ajustar stock de un producto en una ubicación
// @Description  Aplica un delta con signo (entrada positiva, corrección negativa)
//
//	de forma atómica: asiento en el ledger + caché en la misma transacción.
//
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "product_id, location_id, delta; expected_version opcional para CAS"
// @Success      200   {object}  dto.AdjustStockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/adjustments [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	var req dto.AdjustStockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if details, err := validateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Details: details})
	}

	result, err := h.adjust.Adjust(c.Context(), stock.AdjustInput{
		ProductID:       req.ProductID,
		LocationID:      req.LocationID,
		UserID:          GetUserID(c),
		Delta:           req.Delta,
		Note:            req.Note,
		AllowNegative:   req.AllowNegative,
		ExpectedVersion: req.ExpectedVersion,
	})
	if err != nil {
		return domainErrorResponse(c, err)
	}
	return c.JSON(dto.AdjustStockResponse{
		ProductID:   req.ProductID,
		LocationID:  req.LocationID,
		NewQuantity: result.NewQuantity,
		NewVersion:  result.NewVersion,
	})
}

// Transfer godoc
// @Summary      Trasladar stock entre ubicaciones
// @Description  Deducción en origen y acreditación en destino en una sola
//
//	transacción. Stock insuficiente devuelve 409 con cantidad actual y faltante.
//
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferStockRequest  true  "product_id, from_location_id, to_location_id, quantity"
// @Success      200   {object}  dto.TransferStockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/transfers [post]
func (h *StockHandler) Transfer(c *fiber.Ctx) error {
	var req dto.TransferStockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if details, err := validateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Details: details})
	}

	result, err := h.transfer.Transfer(c.Context(), stock.TransferInput{
		ProductID:           req.ProductID,
		FromLocationID:      req.FromLocationID,
		ToLocationID:        req.ToLocationID,
		UserID:              GetUserID(c),
		Quantity:            req.Quantity,
		ExpectedFromVersion: req.ExpectedFromVersion,
		Note:                req.Note,
	})
	if err != nil {
		return domainErrorResponse(c, err)
	}
	return c.JSON(dto.TransferStockResponse{
		ProductID:    req.ProductID,
		FromQuantity: result.FromQuantity,
		FromVersion:  result.FromVersion,
		ToQuantity:   result.ToQuantity,
		ToVersion:    result.ToVersion,
		BatchID:      result.BatchID,
	})
}

// BatchTransfer godoc
// @Summary      Traslado por lotes desde varios orígenes a un destino
// @Description  Pre-valida todos los orígenes (cualquier faltante aborta el lote
//
//	completo con 409) y luego ejecuta cada traslado de forma independiente:
//	éxito parcial devuelve 207 con el detalle por línea.
//
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BatchTransferRequest  true  "product_id, to_location_id, sources"
// @Success      200   {object}  dto.BatchTransferResponse
// @Success      207   {object}  dto.BatchTransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/batch-transfers [post]
func (h *StockHandler) BatchTransfer(c *fiber.Ctx) error {
	var req dto.BatchTransferRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if details, err := validateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Details: details})
	}

	sources := make([]stock.BatchSource, 0, len(req.Sources))
	for _, s := range req.Sources {
		sources = append(sources, stock.BatchSource{
			FromLocationID:  s.FromLocationID,
			Quantity:        s.Quantity,
			ExpectedVersion: s.ExpectedVersion,
		})
	}

	result, err := h.batch.Execute(c.Context(), stock.BatchTransferInput{
		ProductID:    req.ProductID,
		ToLocationID: req.ToLocationID,
		UserID:       GetUserID(c),
		Sources:      sources,
	})
	if err != nil {
		return domainErrorResponse(c, err)
	}

	resp := dto.BatchTransferResponse{
		Status:           "ok",
		TotalTransferred: result.TotalTransferred,
		BatchID:          result.BatchID,
	}
	for _, line := range result.Lines {
		lr := dto.BatchTransferLineResult{
			FromLocationID: line.FromLocationID,
			Quantity:       line.Quantity,
			Succeeded:      line.Succeeded,
		}
		if line.Err != nil {
			lr.ErrorCode = errorCode(line.Err)
			lr.ErrorMessage = line.Err.Error()
		}
		resp.Lines = append(resp.Lines, lr)
	}
	status := fiber.StatusOK
	if !result.AllSucceeded {
		resp.Status = "partial"
		status = fiber.StatusMultiStatus
	}
	return c.Status(status).JSON(resp)
}

// GetLevel godoc
// @Summary      Nivel actual de un producto en una ubicación
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id   path  string  true  "Producto (UUID)"
// @Param        location_id  path  string  true  "Ubicación (UUID)"
// @Success      200  {object}  dto.StockLevelResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/stock/levels/{product_id}/{location_id} [get]
func (h *StockHandler) GetLevel(c *fiber.Ctx) error {
	level, err := h.query.GetLevel(c.Params("product_id"), c.Params("location_id"))
	if err != nil {
		return domainErrorResponse(c, err)
	}
	return c.JSON(levelToDTO(level))
}

// ListLevelsByProduct godoc
// @Summary      Stock de un producto en todas las ubicaciones
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id  path  string  true  "Producto (UUID)"
// @Success      200  {array}  dto.StockLevelResponse
// @Router       /api/stock/levels/{product_id} [get]
func (h *StockHandler) ListLevelsByProduct(c *fiber.Ctx) error {
	levels, err := h.query.ListByProduct(c.Params("product_id"))
	if err != nil {
		return domainErrorResponse(c, err)
	}
	out := make([]dto.StockLevelResponse, 0, len(levels))
	for _, level := range levels {
		out = append(out, levelToDTO(level))
	}
	return c.JSON(out)
}

// Availability godoc
// @Summary      Chequeo read-only de disponibilidad
// @Description  Indica si la cantidad requerida está disponible; si no, reporta
//
//	la cantidad actual y el faltante. Solo consulta, nunca muta.
//
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id   query  string  true   "Producto (UUID)"
// @Param        location_id  query  string  true   "Ubicación (UUID)"
// @Param        required     query  int     true   "Cantidad requerida (> 0)"
// @Success      200  {object}  dto.AvailabilityResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/availability [get]
func (h *StockHandler) Availability(c *fiber.Ctx) error {
	required := int64(c.QueryInt("required"))
	productID := c.Query("product_id")
	locationID := c.Query("location_id")
	if productID == "" || locationID == "" || required <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id, location_id y required (> 0) son requeridos"})
	}
	av, err := h.query.Availability(productID, locationID, required)
	if err != nil {
		return domainErrorResponse(c, err)
	}
	return c.JSON(dto.AvailabilityResponse{
		IsValid:         av.IsValid,
		CurrentQuantity: av.CurrentQuantity,
		Shortfall:       av.Shortfall,
	})
}

// Replenishment godoc
// @Summary      Lista de reposición
// @Description  Pares (producto, ubicación) en o bajo su umbral mínimo.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  false  "Filtrar por ubicación (UUID). Vacío = todas."
// @Param        limit        query  int     false  "Máximo de filas (default 20)"
// @Param        offset       query  int     false  "Desplazamiento"
// @Success      200  {array}  dto.ReplenishmentItemResponse
// @Router       /api/stock/replenishment [get]
func (h *StockHandler) Replenishment(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	rows, err := h.query.Replenishment(c.Query("location_id"), page.Limit, page.Offset)
	if err != nil {
		return domainErrorResponse(c, err)
	}
	out := make([]dto.ReplenishmentItemResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, dto.ReplenishmentItemResponse{
			ProductID:   row.ProductID,
			LocationID:  row.LocationID,
			Quantity:    row.Quantity,
			MinQuantity: row.MinQuantity,
			Deficit:     row.MinQuantity - row.Quantity,
		})
	}
	return c.JSON(fiber.Map{"total": len(out), "items": out})
}

// SetMinQuantity godoc
// @Summary      Fijar umbral de reposición de un par (producto, ubicación)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SetMinQuantityRequest  true  "product_id, location_id, min_quantity"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/min-quantity [put]
func (h *StockHandler) SetMinQuantity(c *fiber.Ctx) error {
	var req dto.SetMinQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if details, err := validateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Details: details})
	}
	if err := h.query.SetMinQuantity(req.ProductID, req.LocationID, req.MinQuantity); err != nil {
		return domainErrorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LedgerHistory godoc
// @Summary      Historial del ledger de un par (producto, ubicación)
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id   path   string  true   "Producto (UUID)"
// @Param        location_id  path   string  true   "Ubicación (UUID)"
// @Param        from         query  string  false  "Desde (RFC3339)"
// @Param        to           query  string  false  "Hasta (RFC3339)"
// @Param        limit        query  int     false  "Máximo de asientos (default 20)"
// @Param        offset       query  int     false  "Desplazamiento"
// @Success      200  {array}  dto.LedgerEntryResponse
// @Router       /api/stock/ledger/{product_id}/{location_id} [get]
func (h *StockHandler) LedgerHistory(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	from, err := parseTimeQuery(c.Query("from"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido (RFC3339)"})
	}
	to, err := parseTimeQuery(c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido (RFC3339)"})
	}

	entries, err := h.query.LedgerHistory(c.Params("product_id"), c.Params("location_id"), from, to, page.Limit, page.Offset)
	if err != nil {
		return domainErrorResponse(c, err)
	}
	return c.JSON(ledgerToDTO(entries))
}

// LedgerByBatch godoc
// @Summary      Asientos del ledger de un batch de auditoría
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        batch_id  path  string  true  "Batch (UUID)"
// @Success      200  {array}  dto.LedgerEntryResponse
// @Router       /api/stock/ledger/batch/{batch_id} [get]
func (h *StockHandler) LedgerByBatch(c *fiber.Ctx) error {
	entries, err := h.query.LedgerByBatch(c.Params("batch_id"))
	if err != nil {
		return domainErrorResponse(c, err)
	}
	return c.JSON(ledgerToDTO(entries))
}

func levelToDTO(level *entity.LocationStock) dto.StockLevelResponse {
	return dto.StockLevelResponse{
		ProductID:   level.ProductID,
		LocationID:  level.LocationID,
		Quantity:    level.Quantity,
		MinQuantity: level.MinQuantity,
		Version:     level.Version,
	}
}

func ledgerToDTO(entries []*entity.StockLedgerEntry) []dto.LedgerEntryResponse {
	out := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.LedgerEntryResponse{
			ID:         e.ID,
			ProductID:  e.ProductID,
			LocationID: e.LocationID,
			UserID:     e.UserID,
			Delta:      e.Delta,
			LogType:    e.LogType,
			Note:       e.Note,
			BatchID:    e.BatchID,
			CreatedAt:  e.CreatedAt.Format(time.RFC3339),
		})
	}
	return out
}

func parseTimeQuery(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
