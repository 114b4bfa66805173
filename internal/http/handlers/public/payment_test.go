package public

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/findesk/findesk-api/internal/constants"
	"github.com/findesk/findesk-api/internal/models"
	"github.com/findesk/findesk-api/internal/payment/razorpay"
	"github.com/findesk/findesk-api/internal/provider"
	"github.com/findesk/findesk-api/internal/repository"
	"github.com/findesk/findesk-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupPaymentHandlerTest(t *testing.T, gatewayBaseURL string) (*Handler, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:payment_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Student{},
		&models.Librarian{},
		&models.Library{},
		&models.Payment{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	gatewayCfg := &razorpay.Config{
		KeyID:         "rzp_test_key",
		KeySecret:     "rzp_secret",
		WebhookSecret: "whsec_test",
		APIBaseURL:    gatewayBaseURL,
	}
	paymentRepo := repository.NewPaymentRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	libraryRepo := repository.NewLibraryRepository(db)
	librarianRepo := repository.NewLibrarianRepository(db)
	svc := service.NewPaymentService(paymentRepo, studentRepo, libraryRepo, librarianRepo, gatewayCfg, nil)

	return New(&provider.Container{PaymentService: svc}), db
}

func seedHandlerStudentAndLibrary(t *testing.T, db *gorm.DB) (*models.Student, *models.Library) {
	t.Helper()
	student := &models.Student{Email: "asha@findesk.dev", PasswordHash: "hash", Name: "Asha Rao"}
	if err := db.Create(student).Error; err != nil {
		t.Fatalf("create student failed: %v", err)
	}
	librarian := &models.Librarian{Email: "owner@findesk.dev", PasswordHash: "hash", Name: "Central Owner"}
	if err := db.Create(librarian).Error; err != nil {
		t.Fatalf("create librarian failed: %v", err)
	}
	library := &models.Library{LibrarianID: librarian.ID, Name: "Central Study Hall", SeatCount: 60}
	if err := db.Create(library).Error; err != nil {
		t.Fatalf("create library failed: %v", err)
	}
	return student, library
}

func seedHandlerCreatedPayment(t *testing.T, db *gorm.DB, orderID string) *models.Payment {
	t.Helper()
	payment := &models.Payment{
		StudentID:       1,
		LibrarianID:     2,
		LibraryID:       3,
		Amount:          models.NewMoneyFromDecimal(decimal.NewFromInt(1000)),
		PlatformFee:     models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		PayoutAmount:    models.NewMoneyFromDecimal(decimal.NewFromInt(900)),
		Currency:        "INR",
		Status:          constants.PaymentStatusCreated,
		RazorpayOrderID: orderID,
	}
	if err := db.Create(payment).Error; err != nil {
		t.Fatalf("create payment failed: %v", err)
	}
	return payment
}

func handlerWebhookSignature(orderID, paymentID string) string {
	h := hmac.New(sha256.New, []byte("whsec_test"))
	_, _ = h.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(h.Sum(nil))
}

func postJSON(t *testing.T, handle gin.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	handle(c)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) (bool, string, map[string]interface{}) {
	t.Helper()
	var resp struct {
		Success bool                   `json:"success"`
		Message string                 `json:"message"`
		Data    map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response failed: %v body=%s", err, w.Body.String())
	}
	return resp.Success, resp.Message, resp.Data
}

func TestCreateOrderHandlerInvalidBody(t *testing.T) {
	h, _ := setupPaymentHandlerTest(t, "https://api.razorpay.com")

	w := postJSON(t, h.CreateOrder, "/api/v1/payments/create-order", `{"librarianId":1}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status want 400 got %d", w.Code)
	}
	success, message, _ := decodeEnvelope(t, w)
	if success || message != "Invalid input parameters" {
		t.Fatalf("unexpected envelope: success=%v message=%s", success, message)
	}
}

func TestCreateOrderHandlerStudentNotFound(t *testing.T) {
	h, db := setupPaymentHandlerTest(t, "https://api.razorpay.com")
	_, library := seedHandlerStudentAndLibrary(t, db)

	body := fmt.Sprintf(`{"librarianId":%d,"studentId":9999,"amount":"1000"}`, library.ID)
	w := postJSON(t, h.CreateOrder, "/api/v1/payments/create-order", body)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status want 404 got %d", w.Code)
	}
	success, message, _ := decodeEnvelope(t, w)
	if success || message != "Student not found" {
		t.Fatalf("unexpected envelope: success=%v message=%s", success, message)
	}
}

func TestCreateOrderHandlerSuccess(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":       "order_h_001",
			"amount":   100000,
			"currency": "INR",
			"status":   "created",
		})
	}))
	defer gateway.Close()

	h, db := setupPaymentHandlerTest(t, gateway.URL)
	student, library := seedHandlerStudentAndLibrary(t, db)

	body := fmt.Sprintf(`{"librarianId":%d,"studentId":%d,"amount":"1000"}`, library.ID, student.ID)
	w := postJSON(t, h.CreateOrder, "/api/v1/payments/create-order", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d body=%s", w.Code, w.Body.String())
	}
	success, _, data := decodeEnvelope(t, w)
	if !success {
		t.Fatalf("expected success envelope, body=%s", w.Body.String())
	}
	if data["orderId"] != "order_h_001" {
		t.Fatalf("orderId want order_h_001 got %v", data["orderId"])
	}
	if data["keyId"] != "rzp_test_key" {
		t.Fatalf("keyId want rzp_test_key got %v", data["keyId"])
	}
	if data["currency"] != "INR" {
		t.Fatalf("currency want INR got %v", data["currency"])
	}
}

func TestCreateOrderHandlerDuplicateOrder(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":       "order_h_dup",
			"amount":   100000,
			"currency": "INR",
			"status":   "created",
		})
	}))
	defer gateway.Close()

	h, db := setupPaymentHandlerTest(t, gateway.URL)
	student, library := seedHandlerStudentAndLibrary(t, db)

	body := fmt.Sprintf(`{"librarianId":%d,"studentId":%d,"amount":"1000"}`, library.ID, student.ID)
	if w := postJSON(t, h.CreateOrder, "/api/v1/payments/create-order", body); w.Code != http.StatusOK {
		t.Fatalf("first create want 200 got %d", w.Code)
	}
	w := postJSON(t, h.CreateOrder, "/api/v1/payments/create-order", body)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate create want 409 got %d body=%s", w.Code, w.Body.String())
	}
	success, message, _ := decodeEnvelope(t, w)
	if success || message != "Duplicate order detected" {
		t.Fatalf("unexpected envelope: success=%v message=%s", success, message)
	}
}

func TestWebhookHandlerSuccessAndReplay(t *testing.T) {
	h, db := setupPaymentHandlerTest(t, "https://api.razorpay.com")
	seedHandlerCreatedPayment(t, db, "order_h_wh_001")

	body := fmt.Sprintf(
		`{"event":"payment.captured","razorpay_order_id":"order_h_wh_001","razorpay_payment_id":"pay_h_001","razorpay_signature":"%s","student_id":1,"librarianId":3}`,
		handlerWebhookSignature("order_h_wh_001", "pay_h_001"),
	)
	w := postJSON(t, h.Webhook, "/api/v1/payments/webhook", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d body=%s", w.Code, w.Body.String())
	}
	success, message, data := decodeEnvelope(t, w)
	if !success || message != "Payment processed successfully" {
		t.Fatalf("unexpected envelope: success=%v message=%s", success, message)
	}
	if data["status"] != constants.PaymentStatusTransferred {
		t.Fatalf("status want TRANSFERRED got %v", data["status"])
	}

	w = postJSON(t, h.Webhook, "/api/v1/payments/webhook", body)
	if w.Code != http.StatusOK {
		t.Fatalf("replay status want 200 got %d", w.Code)
	}
	success, message, _ = decodeEnvelope(t, w)
	if !success || message != "Payment already processed" {
		t.Fatalf("unexpected replay envelope: success=%v message=%s", success, message)
	}
}

func TestWebhookHandlerSignatureMismatch(t *testing.T) {
	h, db := setupPaymentHandlerTest(t, "https://api.razorpay.com")
	seedHandlerCreatedPayment(t, db, "order_h_wh_002")

	body := `{"event":"payment.captured","razorpay_order_id":"order_h_wh_002","razorpay_payment_id":"pay_h_002","razorpay_signature":"deadbeef","student_id":1,"librarianId":3}`
	w := postJSON(t, h.Webhook, "/api/v1/payments/webhook", body)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status want 401 got %d body=%s", w.Code, w.Body.String())
	}
	success, message, _ := decodeEnvelope(t, w)
	if success || message != "Unauthorized - signature mismatch" {
		t.Fatalf("unexpected envelope: success=%v message=%s", success, message)
	}
}

func TestWebhookHandlerUnknownOrder(t *testing.T) {
	h, _ := setupPaymentHandlerTest(t, "https://api.razorpay.com")

	body := fmt.Sprintf(
		`{"event":"payment.captured","razorpay_order_id":"order_missing","razorpay_payment_id":"pay_x","razorpay_signature":"%s","student_id":1,"librarianId":3}`,
		handlerWebhookSignature("order_missing", "pay_x"),
	)
	w := postJSON(t, h.Webhook, "/api/v1/payments/webhook", body)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status want 404 got %d body=%s", w.Code, w.Body.String())
	}
	success, message, _ := decodeEnvelope(t, w)
	if success || message != "Payment record not found" {
		t.Fatalf("unexpected envelope: success=%v message=%s", success, message)
	}
}

func TestWebhookHandlerVoidedOrderConflicts(t *testing.T) {
	h, db := setupPaymentHandlerTest(t, "https://api.razorpay.com")
	payment := seedHandlerCreatedPayment(t, db, "order_h_wh_003")
	payment.Status = constants.PaymentStatusVoid
	if err := db.Save(payment).Error; err != nil {
		t.Fatalf("void payment failed: %v", err)
	}

	body := fmt.Sprintf(
		`{"event":"payment.captured","razorpay_order_id":"order_h_wh_003","razorpay_payment_id":"pay_h_003","razorpay_signature":"%s","student_id":1,"librarianId":3}`,
		handlerWebhookSignature("order_h_wh_003", "pay_h_003"),
	)
	w := postJSON(t, h.Webhook, "/api/v1/payments/webhook", body)
	if w.Code != http.StatusConflict {
		t.Fatalf("status want 409 got %d body=%s", w.Code, w.Body.String())
	}
	success, message, _ := decodeEnvelope(t, w)
	if success || message != "Payment status conflict" {
		t.Fatalf("unexpected envelope: success=%v message=%s", success, message)
	}
}

func TestWebhookHandlerIgnoresOtherEvents(t *testing.T) {
	h, _ := setupPaymentHandlerTest(t, "https://api.razorpay.com")

	body := fmt.Sprintf(
		`{"event":"payment.failed","razorpay_order_id":"order_h_wh_004","razorpay_payment_id":"pay_h_004","razorpay_signature":"%s","student_id":1,"librarianId":3}`,
		handlerWebhookSignature("order_h_wh_004", "pay_h_004"),
	)
	w := postJSON(t, h.Webhook, "/api/v1/payments/webhook", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	success, message, _ := decodeEnvelope(t, w)
	if !success || message != "Event ignored" {
		t.Fatalf("unexpected envelope: success=%v message=%s", success, message)
	}
}

func TestWebhookHandlerMissingFields(t *testing.T) {
	h, _ := setupPaymentHandlerTest(t, "https://api.razorpay.com")

	// 缺 student_id / librarianId 时绑定校验直接拒绝
	body := fmt.Sprintf(
		`{"event":"payment.captured","razorpay_order_id":"order_h_wh_005","razorpay_payment_id":"pay_h_005","razorpay_signature":"%s"}`,
		handlerWebhookSignature("order_h_wh_005", "pay_h_005"),
	)
	w := postJSON(t, h.Webhook, "/api/v1/payments/webhook", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status want 400 got %d body=%s", w.Code, w.Body.String())
	}
	success, message, _ := decodeEnvelope(t, w)
	if success || message != "Missing required fields" {
		t.Fatalf("unexpected envelope: success=%v message=%s", success, message)
	}
}

func TestWebhookHandlerRejectsTamperedIgnoredEvent(t *testing.T) {
	h, db := setupPaymentHandlerTest(t, "https://api.razorpay.com")
	seedHandlerCreatedPayment(t, db, "order_h_wh_006")

	body := `{"event":"payment.failed","razorpay_order_id":"order_h_wh_006","razorpay_payment_id":"pay_h_006","razorpay_signature":"deadbeef","student_id":1,"librarianId":3}`
	w := postJSON(t, h.Webhook, "/api/v1/payments/webhook", body)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status want 401 got %d body=%s", w.Code, w.Body.String())
	}
	success, message, _ := decodeEnvelope(t, w)
	if success || message != "Unauthorized - signature mismatch" {
		t.Fatalf("unexpected envelope: success=%v message=%s", success, message)
	}
}
