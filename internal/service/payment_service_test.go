package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/findesk/findesk-api/internal/constants"
	"github.com/findesk/findesk-api/internal/models"
	"github.com/findesk/findesk-api/internal/payment/razorpay"
	"github.com/findesk/findesk-api/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupPaymentServiceTest(t *testing.T, gatewayCfg *razorpay.Config) (*PaymentService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:payment_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
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

	if gatewayCfg == nil {
		gatewayCfg = &razorpay.Config{
			KeyID:         "rzp_test_key",
			KeySecret:     "rzp_secret",
			WebhookSecret: "whsec_test",
		}
	}

	paymentRepo := repository.NewPaymentRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	libraryRepo := repository.NewLibraryRepository(db)
	librarianRepo := repository.NewLibrarianRepository(db)
	svc := NewPaymentService(paymentRepo, studentRepo, libraryRepo, librarianRepo, gatewayCfg, nil)
	return svc, db
}

func seedStudentAndLibrary(t *testing.T, db *gorm.DB) (*models.Student, *models.Library) {
	t.Helper()
	now := time.Now()
	student := &models.Student{
		Email:        "asha@findesk.dev",
		PasswordHash: "hash",
		Name:         "Asha Rao",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := db.Create(student).Error; err != nil {
		t.Fatalf("create student failed: %v", err)
	}
	librarian := &models.Librarian{
		Email:             "owner@findesk.dev",
		PasswordHash:      "hash",
		Name:              "Central Owner",
		RazorpayAccountID: "acc_demo_central",
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := db.Create(librarian).Error; err != nil {
		t.Fatalf("create librarian failed: %v", err)
	}
	library := &models.Library{
		LibrarianID: librarian.ID,
		Name:        "Central Study Hall",
		SeatCount:   60,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.Create(library).Error; err != nil {
		t.Fatalf("create library failed: %v", err)
	}
	return student, library
}

func newFakeOrderGateway(t *testing.T, orderID string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/orders" {
			t.Errorf("unexpected gateway path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":       orderID,
			"amount":   100000,
			"currency": "INR",
			"status":   "created",
		})
	}))
}

func TestCreateOrderComputesFeeAndPersistsCreated(t *testing.T) {
	gateway := newFakeOrderGateway(t, "order_svc_001")
	defer gateway.Close()

	svc, db := setupPaymentServiceTest(t, &razorpay.Config{
		KeyID:              "rzp_test_key",
		KeySecret:          "rzp_secret",
		WebhookSecret:      "whsec_test",
		APIBaseURL:         gateway.URL,
		PlatformFeePercent: 10,
	})
	student, library := seedStudentAndLibrary(t, db)

	result, err := svc.CreateOrder(CreateOrderInput{
		StudentID: student.ID,
		LibraryID: library.ID,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromInt(1000)),
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if result.Payment.RazorpayOrderID != "order_svc_001" {
		t.Fatalf("order id want order_svc_001 got %s", result.Payment.RazorpayOrderID)
	}
	if result.Payment.Status != constants.PaymentStatusCreated {
		t.Fatalf("status want CREATED got %s", result.Payment.Status)
	}
	if !result.Payment.PlatformFee.Decimal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("platform fee want 100 got %s", result.Payment.PlatformFee.String())
	}
	if !result.Payment.PayoutAmount.Decimal.Equal(decimal.NewFromInt(900)) {
		t.Fatalf("payout amount want 900 got %s", result.Payment.PayoutAmount.String())
	}
	if result.Librarian == nil || result.Librarian.ID != library.LibrarianID {
		t.Fatalf("result librarian mismatch: %+v", result.Librarian)
	}
	if result.GatewayKeyID != "rzp_test_key" {
		t.Fatalf("gateway key id want rzp_test_key got %s", result.GatewayKeyID)
	}

	var stored models.Payment
	if err := db.Where("razorpay_order_id = ?", "order_svc_001").First(&stored).Error; err != nil {
		t.Fatalf("stored payment not found: %v", err)
	}
	if stored.Status != constants.PaymentStatusCreated {
		t.Fatalf("stored status want CREATED got %s", stored.Status)
	}
	if stored.LibrarianID != library.LibrarianID || stored.LibraryID != library.ID {
		t.Fatalf("stored payment references mismatch: %+v", stored)
	}
}

func TestCreateOrderStudentNotFound(t *testing.T) {
	svc, db := setupPaymentServiceTest(t, nil)
	_, library := seedStudentAndLibrary(t, db)

	_, err := svc.CreateOrder(CreateOrderInput{
		StudentID: 9999,
		LibraryID: library.ID,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
	})
	if err != ErrStudentNotFound {
		t.Fatalf("want ErrStudentNotFound got %v", err)
	}
}

func TestCreateOrderLibraryNotFound(t *testing.T) {
	svc, db := setupPaymentServiceTest(t, nil)
	student, _ := seedStudentAndLibrary(t, db)

	_, err := svc.CreateOrder(CreateOrderInput{
		StudentID: student.ID,
		LibraryID: 9999,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
	})
	if err != ErrLibraryNotFound {
		t.Fatalf("want ErrLibraryNotFound got %v", err)
	}
}

func TestCreateOrderLibrarianMissing(t *testing.T) {
	svc, db := setupPaymentServiceTest(t, nil)
	student, _ := seedStudentAndLibrary(t, db)

	orphan := &models.Library{
		LibrarianID: 8888,
		Name:        "Orphan Hall",
	}
	if err := db.Create(orphan).Error; err != nil {
		t.Fatalf("create orphan library failed: %v", err)
	}

	_, err := svc.CreateOrder(CreateOrderInput{
		StudentID: student.ID,
		LibraryID: orphan.ID,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
	})
	if err != ErrLibrarianNotFound {
		t.Fatalf("want ErrLibrarianNotFound got %v", err)
	}
}

func TestCreateOrderInvalidInput(t *testing.T) {
	svc, _ := setupPaymentServiceTest(t, nil)

	_, err := svc.CreateOrder(CreateOrderInput{
		StudentID: 0,
		LibraryID: 1,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
	})
	if err != ErrPaymentInvalid {
		t.Fatalf("missing student want ErrPaymentInvalid got %v", err)
	}

	_, err = svc.CreateOrder(CreateOrderInput{
		StudentID: 1,
		LibraryID: 1,
		Amount:    models.NewMoneyFromDecimal(decimal.Zero),
	})
	if err != ErrPaymentInvalid {
		t.Fatalf("zero amount want ErrPaymentInvalid got %v", err)
	}
}

func TestCreateOrderGatewayRejected(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"description": "order amount invalid"},
		})
	}))
	defer gateway.Close()

	svc, db := setupPaymentServiceTest(t, &razorpay.Config{
		KeyID:      "rzp_test_key",
		KeySecret:  "rzp_secret",
		APIBaseURL: gateway.URL,
	})
	student, library := seedStudentAndLibrary(t, db)

	_, err := svc.CreateOrder(CreateOrderInput{
		StudentID: student.ID,
		LibraryID: library.ID,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
	})
	if err != ErrGatewayRejected {
		t.Fatalf("want ErrGatewayRejected got %v", err)
	}
}

func TestVoidPaymentOnlyFromCreated(t *testing.T) {
	gateway := newFakeOrderGateway(t, "order_void_001")
	defer gateway.Close()

	svc, db := setupPaymentServiceTest(t, &razorpay.Config{
		KeyID:      "rzp_test_key",
		KeySecret:  "rzp_secret",
		APIBaseURL: gateway.URL,
	})
	student, library := seedStudentAndLibrary(t, db)

	if _, err := svc.CreateOrder(CreateOrderInput{
		StudentID: student.ID,
		LibraryID: library.ID,
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromInt(500)),
	}); err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	voided, err := svc.VoidPayment("order_void_001")
	if err != nil {
		t.Fatalf("void payment failed: %v", err)
	}
	if voided.Status != constants.PaymentStatusVoid {
		t.Fatalf("status want VOID got %s", voided.Status)
	}

	if _, err := svc.VoidPayment("order_void_001"); err != ErrPaymentStatusInvalid {
		t.Fatalf("second void want ErrPaymentStatusInvalid got %v", err)
	}
	if _, err := svc.VoidPayment("order_unknown"); err != ErrPaymentNotFound {
		t.Fatalf("unknown order want ErrPaymentNotFound got %v", err)
	}
}

func TestListPaymentsRejectsUnknownStatus(t *testing.T) {
	svc, _ := setupPaymentServiceTest(t, nil)

	if _, _, err := svc.ListPayments(repository.PaymentListFilter{Status: "SETTLED"}); err != ErrPaymentStatusInvalid {
		t.Fatalf("unknown status want ErrPaymentStatusInvalid got %v", err)
	}
	if _, _, err := svc.ListPayments(repository.PaymentListFilter{Page: 1, PageSize: 10}); err != nil {
		t.Fatalf("list without status failed: %v", err)
	}
}
