package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrConfigInvalid    = errors.New("razorpay config invalid")
	ErrRequestFailed    = errors.New("razorpay request failed")
	ErrOrderRejected    = errors.New("razorpay order rejected")
	ErrResponseInvalid  = errors.New("razorpay response invalid")
	ErrSignatureInvalid = errors.New("razorpay signature invalid")
)

const (
	defaultAPIBaseURL         = "https://api.razorpay.com"
	defaultTimeoutMS          = 15000
	defaultPlatformFeePercent = 10
)

var zeroDecimalCurrencies = map[string]struct{}{
	"JPY": {},
	"KRW": {},
	"VND": {},
}

// Config Razorpay 网关配置。
type Config struct {
	KeyID              string `json:"key_id"`
	KeySecret          string `json:"key_secret"`
	WebhookSecret      string `json:"webhook_secret"`
	APIBaseURL         string `json:"api_base_url"`
	TimeoutMS          int    `json:"timeout_ms"`
	PlatformFeePercent int    `json:"platform_fee_percent"`
}

// CreateOrderInput 创建订单输入。
type CreateOrderInput struct {
	Amount   string
	Currency string
	Receipt  string
	Notes    map[string]string
}

// OrderResult 创建/查询订单返回。
type OrderResult struct {
	OrderID  string
	Amount   string
	Currency string
	Status   string
	Receipt  string
	Raw      map[string]interface{}
}

// PayoutInput 结算转账输入。
type PayoutInput struct {
	Account     string
	Amount      string
	Currency    string
	ReferenceID string
	Narration   string
}

// PayoutResult 结算转账返回。
type PayoutResult struct {
	PayoutID string
	Status   string
	Raw      map[string]interface{}
}

// ValidateConfig 校验配置。
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.KeyID) == "" {
		return fmt.Errorf("%w: key_id is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.KeySecret) == "" {
		return fmt.Errorf("%w: key_secret is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.APIBaseURL) == "" {
		return fmt.Errorf("%w: api_base_url is required", ErrConfigInvalid)
	}
	if _, err := url.ParseRequestURI(strings.TrimSpace(cfg.APIBaseURL)); err != nil {
		return fmt.Errorf("%w: api_base_url is invalid", ErrConfigInvalid)
	}
	return nil
}

// Normalize 归一化配置并填充默认值。
func (c *Config) Normalize() {
	c.KeyID = strings.TrimSpace(c.KeyID)
	c.KeySecret = strings.TrimSpace(c.KeySecret)
	c.WebhookSecret = strings.TrimSpace(c.WebhookSecret)
	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	if c.APIBaseURL == "" {
		c.APIBaseURL = defaultAPIBaseURL
	}
	if c.TimeoutMS <= 0 {
		c.TimeoutMS = defaultTimeoutMS
	}
	if c.PlatformFeePercent <= 0 {
		c.PlatformFeePercent = defaultPlatformFeePercent
	}
}

// PlatformFee 计算平台手续费（银行家舍入，保留 2 位小数）。
func (c *Config) PlatformFee(amount decimal.Decimal) decimal.Decimal {
	percent := c.PlatformFeePercent
	if percent <= 0 {
		percent = defaultPlatformFeePercent
	}
	return amount.Mul(decimal.NewFromInt(int64(percent))).Div(decimal.NewFromInt(100)).RoundBank(2)
}

// CreateOrder 创建 Razorpay 订单。
func CreateOrder(ctx context.Context, cfg *Config, input CreateOrderInput) (*OrderResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		return nil, fmt.Errorf("%w: currency is required", ErrConfigInvalid)
	}
	minorAmount, err := toMinorAmount(input.Amount, currency)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"amount":   minorAmount,
		"currency": currency,
	}
	if receipt := strings.TrimSpace(input.Receipt); receipt != "" {
		payload["receipt"] = receipt
	}
	if len(input.Notes) > 0 {
		payload["notes"] = input.Notes
	}

	respBody, statusCode, err := doJSONRequest(ctx, cfg, http.MethodPost, "/v1/orders", payload)
	if err != nil {
		return nil, err
	}
	if statusCode >= 400 && statusCode < 500 {
		return nil, fmt.Errorf("%w: %s", ErrOrderRejected, readErrorDescription(respBody))
	}
	if statusCode < 200 || statusCode >= 300 {
		return nil, fmt.Errorf("%w: create order status %d", ErrRequestFailed, statusCode)
	}

	raw, err := decodeRawMap(respBody)
	if err != nil {
		return nil, err
	}
	result := &OrderResult{Raw: raw}
	result.OrderID = strings.TrimSpace(readString(raw, "id"))
	result.Status = strings.TrimSpace(readString(raw, "status"))
	result.Receipt = strings.TrimSpace(readString(raw, "receipt"))
	result.Currency = strings.ToUpper(strings.TrimSpace(readString(raw, "currency")))
	if amountMinor := readInt64(raw, "amount"); amountMinor > 0 && result.Currency != "" {
		result.Amount = fromMinorAmount(amountMinor, result.Currency)
	}
	if result.OrderID == "" {
		return nil, fmt.Errorf("%w: missing order id", ErrResponseInvalid)
	}
	return result, nil
}

// CreatePayout 发起结算转账。调用方负责决定触发时机，当前结算流程
// 在确认收款后记账即完成，转账由后续批量任务触发。
func CreatePayout(ctx context.Context, cfg *Config, input PayoutInput) (*PayoutResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	account := strings.TrimSpace(input.Account)
	if account == "" {
		return nil, fmt.Errorf("%w: account is required", ErrConfigInvalid)
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		return nil, fmt.Errorf("%w: currency is required", ErrConfigInvalid)
	}
	minorAmount, err := toMinorAmount(input.Amount, currency)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"account_number": account,
		"amount":         minorAmount,
		"currency":       currency,
		"mode":           "IMPS",
		"purpose":        "payout",
	}
	if referenceID := strings.TrimSpace(input.ReferenceID); referenceID != "" {
		payload["reference_id"] = referenceID
	}
	if narration := strings.TrimSpace(input.Narration); narration != "" {
		payload["narration"] = narration
	}

	respBody, statusCode, err := doJSONRequest(ctx, cfg, http.MethodPost, "/v1/payouts", payload)
	if err != nil {
		return nil, err
	}
	if statusCode >= 400 && statusCode < 500 {
		return nil, fmt.Errorf("%w: %s", ErrOrderRejected, readErrorDescription(respBody))
	}
	if statusCode < 200 || statusCode >= 300 {
		return nil, fmt.Errorf("%w: create payout status %d", ErrRequestFailed, statusCode)
	}

	raw, err := decodeRawMap(respBody)
	if err != nil {
		return nil, err
	}
	result := &PayoutResult{Raw: raw}
	result.PayoutID = strings.TrimSpace(readString(raw, "id"))
	result.Status = strings.TrimSpace(readString(raw, "status"))
	if result.PayoutID == "" {
		return nil, fmt.Errorf("%w: missing payout id", ErrResponseInvalid)
	}
	return result, nil
}

func doJSONRequest(ctx context.Context, cfg *Config, method, path string, payload map[string]interface{}) ([]byte, int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: encode request failed", ErrRequestFailed)
		}
		body = bytes.NewReader(encoded)
	}
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/") + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: build request failed", ErrRequestFailed)
	}
	req.SetBasicAuth(cfg.KeyID, cfg.KeySecret)
	req.Header.Set("Content-Type", "application/json")

	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = defaultTimeoutMS * time.Millisecond
	}
	resp, err := (&http.Client{Timeout: timeout}).Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read response failed", ErrResponseInvalid)
	}
	return respBody, resp.StatusCode, nil
}

func decodeRawMap(body []byte) (map[string]interface{}, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode response failed", ErrResponseInvalid)
	}
	return raw, nil
}

func readErrorDescription(body []byte) string {
	raw, err := decodeRawMap(body)
	if err != nil {
		return "unknown error"
	}
	errRaw, ok := raw["error"].(map[string]interface{})
	if !ok {
		return "unknown error"
	}
	description := strings.TrimSpace(readString(errRaw, "description"))
	if description == "" {
		return "unknown error"
	}
	return description
}

func toMinorAmount(amount string, currency string) (int64, error) {
	parsed, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return 0, fmt.Errorf("%w: amount is invalid", ErrConfigInvalid)
	}
	if parsed.LessThanOrEqual(decimal.Zero) {
		return 0, fmt.Errorf("%w: amount must be greater than zero", ErrConfigInvalid)
	}
	scale := currencyScale(currency)
	minor := parsed.Shift(int32(scale)).Round(0)
	return minor.IntPart(), nil
}

func fromMinorAmount(minor int64, currency string) string {
	scale := currencyScale(currency)
	return decimal.NewFromInt(minor).Shift(int32(-scale)).StringFixed(int32(scale))
}

func currencyScale(currency string) int {
	upper := strings.ToUpper(strings.TrimSpace(currency))
	if _, ok := zeroDecimalCurrencies[upper]; ok {
		return 0
	}
	return 2
}

func readString(raw map[string]interface{}, key string) string {
	if raw == nil || strings.TrimSpace(key) == "" {
		return ""
	}
	value, ok := raw[key]
	if !ok || value == nil {
		return ""
	}
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed)
	case json.Number:
		return strings.TrimSpace(typed.String())
	case float64:
		return strings.TrimSpace(strconv.FormatInt(int64(typed), 10))
	case int64:
		return strings.TrimSpace(strconv.FormatInt(typed, 10))
	case int:
		return strings.TrimSpace(strconv.Itoa(typed))
	default:
		return ""
	}
}

func readInt64(raw map[string]interface{}, key string) int64 {
	if raw == nil || strings.TrimSpace(key) == "" {
		return 0
	}
	value, ok := raw[key]
	if !ok || value == nil {
		return 0
	}
	switch typed := value.(type) {
	case int64:
		return typed
	case int:
		return int64(typed)
	case float64:
		return int64(typed)
	case json.Number:
		parsed, err := typed.Int64()
		if err == nil {
			return parsed
		}
		floatVal, err := typed.Float64()
		if err != nil {
			return 0
		}
		return int64(floatVal)
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}
