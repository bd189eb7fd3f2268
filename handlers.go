package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/norteapps/cartera_backend/config"
	"github.com/norteapps/cartera_backend/models"
	"github.com/norteapps/cartera_backend/models/reports"
	"github.com/norteapps/cartera_backend/utils"
	"github.com/norteapps/cartera_backend/workflow"
)

// respondError maps domain errors to 4xx and everything else to a logged 500.
func respondError(c *gin.Context, module string, fn string, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(validationErrs)})
		return
	}
	switch {
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case utils.IsBusinessError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		config.LogError(config.GetLogger(), module, fn, "request", c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func pathId(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func queryDate(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	parsed, err := utils.ParseDate(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return nil, false
	}
	return &parsed, true
}

// --- auth ---

func signUpHandler(c *gin.Context) {
	var input models.NewUser
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, "handlers.go", "signUpHandler", err)
		return
	}
	user, err := models.SignUp(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "handlers.go", "signUpHandler", err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func loginHandler(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, "handlers.go", "loginHandler", err)
		return
	}
	token, user, err := models.Login(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// --- subscription ---

func getSubscriptionHandler(c *gin.Context) {
	ctx := c.Request.Context()
	organizationId, _ := utils.GetOrganizationIdFromContext(ctx)
	subscription, err := models.GetSubscription(ctx, organizationId)
	if err != nil {
		respondError(c, "handlers.go", "getSubscriptionHandler", err)
		return
	}
	c.JSON(http.StatusOK, subscription)
}

func cancelSubscriptionHandler(c *gin.Context) {
	ctx := c.Request.Context()
	organizationId, _ := utils.GetOrganizationIdFromContext(ctx)
	if err := models.CancelSubscription(ctx, organizationId); err != nil {
		respondError(c, "handlers.go", "cancelSubscriptionHandler", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- suppliers ---

func listSuppliersHandler(c *gin.Context) {
	filter := &models.SupplierFilter{
		Name:  c.Query("name"),
		Phone: c.Query("phone"),
		Email: c.Query("email"),
	}
	suppliers, err := models.GetSuppliers(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "handlers.go", "listSuppliersHandler", err)
		return
	}
	c.JSON(http.StatusOK, suppliers)
}

func createSupplierHandler(c *gin.Context) {
	var input models.NewSupplier
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, "handlers.go", "createSupplierHandler", err)
		return
	}
	supplier, err := models.CreateSupplier(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "handlers.go", "createSupplierHandler", err)
		return
	}
	c.JSON(http.StatusCreated, supplier)
}

func updateSupplierHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input models.NewSupplier
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, "handlers.go", "updateSupplierHandler", err)
		return
	}
	supplier, err := models.UpdateSupplier(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, "handlers.go", "updateSupplierHandler", err)
		return
	}
	c.JSON(http.StatusOK, supplier)
}

func deleteSupplierHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	if err := models.DeleteSupplier(c.Request.Context(), id); err != nil {
		respondError(c, "handlers.go", "deleteSupplierHandler", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- master account ---

func getMasterAccountHandler(c *gin.Context) {
	account, err := models.GetMasterAccount(c.Request.Context())
	if err != nil {
		respondError(c, "handlers.go", "getMasterAccountHandler", err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func upsertMasterAccountHandler(c *gin.Context) {
	var input models.NewMasterAccount
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, "handlers.go", "upsertMasterAccountHandler", err)
		return
	}
	account, err := models.UpsertMasterAccount(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "handlers.go", "upsertMasterAccountHandler", err)
		return
	}
	c.JSON(http.StatusOK, account)
}

// --- branches ---

func listBranchesHandler(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	branches, err := models.GetBranches(c.Request.Context(), activeOnly)
	if err != nil {
		respondError(c, "handlers.go", "listBranchesHandler", err)
		return
	}
	c.JSON(http.StatusOK, branches)
}

func createBranchHandler(c *gin.Context) {
	var input models.NewBranch
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, "handlers.go", "createBranchHandler", err)
		return
	}
	branch, err := models.CreateBranch(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "handlers.go", "createBranchHandler", err)
		return
	}
	c.JSON(http.StatusCreated, branch)
}

func updateBranchHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input models.NewBranch
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, "handlers.go", "updateBranchHandler", err)
		return
	}
	branch, err := models.UpdateBranch(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, "handlers.go", "updateBranchHandler", err)
		return
	}
	c.JSON(http.StatusOK, branch)
}

// --- invoices ---

func listInvoicesHandler(c *gin.Context) {
	filter := &models.InvoiceFilter{
		Folio:       c.Query("folio"),
		Status:      models.InvoiceStatus(c.Query("status")),
		InvoiceType: models.InvoiceType(c.Query("invoice_type")),
	}
	if raw := c.Query("supplier_id"); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil {
			filter.SupplierId = id
		}
	}
	var ok bool
	if filter.DateFrom, ok = queryDate(c, "date_from"); !ok {
		return
	}
	if filter.DateTo, ok = queryDate(c, "date_to"); !ok {
		return
	}
	invoices, err := models.GetInvoices(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "handlers.go", "listInvoicesHandler", err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

func getInvoiceHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	invoice, err := models.GetInvoiceById(c.Request.Context(), id)
	if err != nil {
		respondError(c, "handlers.go", "getInvoiceHandler", err)
		return
	}
	remaining, err := reports.RemainingForInvoice(c.Request.Context(), invoice)
	if err != nil {
		respondError(c, "handlers.go", "getInvoiceHandler", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": invoice, "remaining": remaining})
}

func createInvoiceHandler(c *gin.Context) {
	var input models.NewInvoice
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, "handlers.go", "createInvoiceHandler", err)
		return
	}
	invoice, err := workflow.CreateInvoiceWithSchedule(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "handlers.go", "createInvoiceHandler", err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

func updateInvoiceHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input models.NewInvoice
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, "handlers.go", "updateInvoiceHandler", err)
		return
	}
	invoice, err := workflow.UpdateInvoice(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, "handlers.go", "updateInvoiceHandler", err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func deleteInvoiceHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	if err := workflow.DeleteInvoice(c.Request.Context(), id); err != nil {
		respondError(c, "handlers.go", "deleteInvoiceHandler", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- payments & movements ---

func registerPaymentHandler(c *gin.Context) {
	var input workflow.NewInvoicePayment
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, "handlers.go", "registerPaymentHandler", err)
		return
	}
	movement, err := workflow.RegisterInvoicePayment(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "handlers.go", "registerPaymentHandler", err)
		return
	}
	c.JSON(http.StatusCreated, movement)
}

func editPaymentHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input workflow.EditPayment
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, "handlers.go", "editPaymentHandler", err)
		return
	}
	movement, err := workflow.EditInvoicePayment(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, "handlers.go", "editPaymentHandler", err)
		return
	}
	c.JSON(http.StatusOK, movement)
}

func deleteMovementHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	if err := workflow.DeleteMovement(c.Request.Context(), id); err != nil {
		respondError(c, "handlers.go", "deleteMovementHandler", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func bulkPaymentHandler(c *gin.Context) {
	var input workflow.BulkPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, "handlers.go", "bulkPaymentHandler", err)
		return
	}
	ctx, span := tracer.Start(c.Request.Context(), "bulk-payments")
	defer span.End()
	report, err := workflow.ProcessBulkPayments(ctx, &input)
	if err != nil {
		respondError(c, "handlers.go", "bulkPaymentHandler", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func createAdjustmentHandler(c *gin.Context) {
	var input workflow.NewAdjustment
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, "handlers.go", "createAdjustmentHandler", err)
		return
	}
	movement, err := workflow.CreateAdjustment(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "handlers.go", "createAdjustmentHandler", err)
		return
	}
	c.JSON(http.StatusCreated, movement)
}

func listMovementsHandler(c *gin.Context) {
	filter := &models.MovementFilter{
		Origin: models.MovementOrigin(c.Query("origin")),
		Folio:  c.Query("folio"),
	}
	if raw := c.Query("branch_id"); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil {
			filter.BranchId = id
		}
	}
	var ok bool
	if filter.DateFrom, ok = queryDate(c, "date_from"); !ok {
		return
	}
	if filter.DateTo, ok = queryDate(c, "date_to"); !ok {
		return
	}
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			filter.Limit = n
		}
	}
	movements, err := models.GetMovements(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "handlers.go", "listMovementsHandler", err)
		return
	}
	c.JSON(http.StatusOK, movements)
}

// --- sales ---

func listSalesHandler(c *gin.Context) {
	filter := &models.SaleFilter{}
	if raw := c.Query("branch_id"); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil {
			filter.BranchId = id
		}
	}
	var ok bool
	if filter.DateFrom, ok = queryDate(c, "date_from"); !ok {
		return
	}
	if filter.DateTo, ok = queryDate(c, "date_to"); !ok {
		return
	}
	sales, err := models.GetSales(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "handlers.go", "listSalesHandler", err)
		return
	}
	c.JSON(http.StatusOK, sales)
}

func createSaleHandler(c *gin.Context) {
	var input models.NewSale
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, "handlers.go", "createSaleHandler", err)
		return
	}
	sale, err := workflow.CreateSaleIncome(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "handlers.go", "createSaleHandler", err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

func updateSaleHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input models.NewSale
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, "handlers.go", "updateSaleHandler", err)
		return
	}
	sale, err := workflow.EditSaleIncome(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, "handlers.go", "updateSaleHandler", err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

func deleteSaleHandler(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	if err := workflow.DeleteSaleIncome(c.Request.Context(), id); err != nil {
		respondError(c, "handlers.go", "deleteSaleHandler", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- balances, calendar, day detail ---

func balanceHandler(c *gin.Context) {
	balance, err := reports.GlobalBalance(c.Request.Context())
	if err != nil {
		respondError(c, "handlers.go", "balanceHandler", err)
		return
	}
	payable, err := reports.TotalPayable(c.Request.Context())
	if err != nil {
		respondError(c, "handlers.go", "balanceHandler", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance, "payable": payable})
}

func calendarHandler(c *gin.Context) {
	year, _ := strconv.Atoi(c.Param("year"))
	month, _ := strconv.Atoi(c.Param("month"))
	calendar, err := reports.BuildMonthlyCalendar(c.Request.Context(), year, month, c.Query("folio"))
	if err != nil {
		respondError(c, "handlers.go", "calendarHandler", err)
		return
	}
	c.JSON(http.StatusOK, calendar)
}

func dayDetailHandler(c *gin.Context) {
	day, err := utils.ParseDate(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
		return
	}
	detail, err := reports.BuildDayDetail(c.Request.Context(), day)
	if err != nil {
		respondError(c, "handlers.go", "dayDetailHandler", err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// --- reports ---

func movementReportFilter(c *gin.Context) (*reports.MovementReportFilter, bool) {
	filter := &reports.MovementReportFilter{
		Origin: models.MovementOrigin(c.Query("origin")),
	}
	var ok bool
	if filter.DateFrom, ok = queryDate(c, "date_from"); !ok {
		return nil, false
	}
	if filter.DateTo, ok = queryDate(c, "date_to"); !ok {
		return nil, false
	}
	if raw := c.Query("branch_id"); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil {
			filter.BranchId = id
		}
	}
	if raw := c.Query("supplier_id"); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil {
			filter.SupplierId = id
		}
	}
	return filter, true
}

func movementReportHandler(c *gin.Context) {
	filter, ok := movementReportFilter(c)
	if !ok {
		return
	}
	report, err := reports.BuildMovementReport(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "handlers.go", "movementReportHandler", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func movementReportExportHandler(c *gin.Context) {
	filter, ok := movementReportFilter(c)
	if !ok {
		return
	}
	buf, err := reports.ExportMovementReportExcel(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "handlers.go", "movementReportExportHandler", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="reporte_movimientos.xlsx"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func invoiceReportHandler(c *gin.Context) {
	filter := &reports.InvoiceReportFilter{
		Status: models.InvoiceStatus(c.Query("status")),
	}
	var ok bool
	if filter.DateFrom, ok = queryDate(c, "date_from"); !ok {
		return
	}
	if filter.DateTo, ok = queryDate(c, "date_to"); !ok {
		return
	}
	if raw := c.Query("supplier_id"); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil {
			filter.SupplierId = id
		}
	}
	report, err := reports.BuildInvoiceReport(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "handlers.go", "invoiceReportHandler", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func salesRange(c *gin.Context) (time.Time, time.Time, int, bool) {
	from, ok := queryDate(c, "date_from")
	if !ok || from == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date_from is required"})
		return time.Time{}, time.Time{}, 0, false
	}
	to, ok := queryDate(c, "date_to")
	if !ok || to == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date_to is required"})
		return time.Time{}, time.Time{}, 0, false
	}
	branchId := 0
	if raw := c.Query("branch_id"); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil {
			branchId = id
		}
	}
	return *from, *to, branchId, true
}

func salesByBranchReportHandler(c *gin.Context) {
	from, to, branchId, ok := salesRange(c)
	if !ok {
		return
	}
	totals, err := reports.SalesByBranch(c.Request.Context(), from, to, branchId)
	if err != nil {
		respondError(c, "handlers.go", "salesByBranchReportHandler", err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

func dailySalesReportHandler(c *gin.Context) {
	from, to, branchId, ok := salesRange(c)
	if !ok {
		return
	}
	totals, err := reports.DailySales(c.Request.Context(), from, to, branchId)
	if err != nil {
		respondError(c, "handlers.go", "dailySalesReportHandler", err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

func salesAlertsReportHandler(c *gin.Context) {
	from, to, branchId, ok := salesRange(c)
	if !ok {
		return
	}
	threshold, err := utils.ParseDecimal(c.Query("threshold"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid threshold"})
		return
	}
	alerts, err := reports.CriticalSalesAlerts(c.Request.Context(), from, to, branchId, threshold)
	if err != nil {
		respondError(c, "handlers.go", "salesAlertsReportHandler", err)
		return
	}
	c.JSON(http.StatusOK, alerts)
}
