package paymentController

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"skillchain/database/dbtest"
	courseModels "skillchain/models/course"
	paymentModels "skillchain/models/payment"
	"skillchain/services/enrollment"
	"skillchain/services/gateway"
	"skillchain/services/payments"
	paymentValidator "skillchain/validators/payment"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const secret = "sk_test_secret"

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func as(userID, email string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("userId", userID)
		c.Locals("email", email)
		return c.Next()
	}
}

// processor fakes the gateway API. Every verified reference reports a
// successful charge of the amount it was initialized with.
func processor(t *testing.T) *httptest.Server {
	t.Helper()
	amounts := map[string]int64{}
	metas := map[string]gateway.ChargeMetadata{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/transaction/initialize":
			var req gateway.InitializeRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			amounts[req.Reference] = req.AmountMinor
			metas[req.Reference] = req.Metadata
			_ = json.NewEncoder(w).Encode(map[string]any{
				"status": true,
				"data": map[string]any{
					"reference":         req.Reference,
					"authorization_url": "https://checkout.example/" + req.Reference,
					"access_code":       "ac",
				},
			})
		case strings.HasPrefix(r.URL.Path, "/transaction/verify/"):
			ref := strings.TrimPrefix(r.URL.Path, "/transaction/verify/")
			amount, ok := amounts[ref]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				_ = json.NewEncoder(w).Encode(map[string]any{"status": false, "message": "Transaction reference not found"})
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"status": true,
				"data": map[string]any{
					"status":    "success",
					"reference": ref,
					"amount":    amount,
					"currency":  "NGN",
					"metadata":  metas[ref],
				},
			})
		case r.URL.Path == "/subaccount":
			var req gateway.SubaccountRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"status": true,
				"data":   map[string]any{"subaccount_code": "ACCT_" + req.AccountNumber, "business_name": req.BusinessName},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db := dbtest.Open(t)
	dbtest.SeedCourse(t, db, "c1", "i1", 5000, 2)
	dbtest.SeedCourse(t, db, "free", "i1", 0, 1)

	srv := processor(t)
	gw := gateway.New(gateway.Options{BaseURL: srv.URL, SecretKey: secret, Timeout: 2 * time.Second, BreakerOpenAfter: time.Minute})
	h := &PaymentHandler{Payments: payments.NewService(db, gw, enrollment.NewWriter(db, nil), payments.Options{Currency: "NGN", PlatformFeePercent: 20})}

	auth := as("u1", "u1@example.com")
	app := fiber.New()
	app.Post("/payments/initialize", auth, paymentValidator.InitializePayment(), h.InitializePayment)
	app.Get("/payments/verify", auth, paymentValidator.VerifyPayment(), h.VerifyPayment)
	app.Get("/u9/payments/verify", as("u9", "u9@example.com"), paymentValidator.VerifyPayment(), h.VerifyPayment)
	app.Post("/payments/payout-account", as("i1", "i1@example.com"), paymentValidator.PayoutAccount(), h.CreatePayoutAccount)
	app.Post("/payments/webhook", h.Webhook)
	return app, db
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, []byte) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, buf.Bytes()
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestInitializeThenVerifyEnrolls(t *testing.T) {
	app, db := newApp(t)

	// Client supplied price fields are ignored
	status, body := do(t, app, postJSON("/payments/initialize", `{"courseId":"c1","coursePrice":1}`))
	require.Equal(t, 200, status, string(body))

	var env envelope
	require.NoError(t, json.Unmarshal(body, &env))
	var init struct {
		Reference        string `json:"reference"`
		AuthorizationURL string `json:"authorizationUrl"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &init))
	require.NotEmpty(t, init.Reference)
	assert.Equal(t, "https://checkout.example/"+init.Reference, init.AuthorizationURL)

	var session paymentModels.PaymentSession
	require.NoError(t, db.First(&session, "reference = ?", init.Reference).Error)
	assert.Equal(t, 5000.0, session.Amount)

	for i := 0; i < 2; i++ {
		status, body = do(t, app, httptest.NewRequest("GET", "/payments/verify?reference="+init.Reference, nil))
		require.Equal(t, 200, status, string(body))
		require.NoError(t, json.Unmarshal(body, &env))

		var out struct {
			Status   string `json:"status"`
			CourseID string `json:"courseId"`
			UserID   string `json:"userId"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &out))
		assert.Equal(t, payments.VerifySuccess, out.Status)
		assert.Equal(t, "c1", out.CourseID)
		assert.Equal(t, "u1", out.UserID)
	}

	var enrollments, paid int64
	require.NoError(t, db.Model(&courseModels.Enrollment{}).Where("user_id = ? AND course_id = ?", "u1", "c1").Count(&enrollments).Error)
	require.NoError(t, db.Model(&paymentModels.Payment{}).Count(&paid).Error)
	assert.EqualValues(t, 1, enrollments)
	assert.EqualValues(t, 1, paid)

	status, _ = do(t, app, postJSON("/payments/initialize", `{"courseId":"c1"}`))
	assert.Equal(t, 409, status)
}

func TestVerifyHidesOtherUsersPayments(t *testing.T) {
	app, db := newApp(t)

	status, body := do(t, app, postJSON("/payments/initialize", `{"courseId":"c1"}`))
	require.Equal(t, 200, status, string(body))
	var env envelope
	require.NoError(t, json.Unmarshal(body, &env))
	var init struct {
		Reference string `json:"reference"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &init))

	status, body = do(t, app, httptest.NewRequest("GET", "/u9/payments/verify?reference="+init.Reference, nil))
	assert.Equal(t, 404, status)
	require.NoError(t, json.Unmarshal(body, &env))
	assert.False(t, env.Status)
	assert.NotContains(t, string(env.Data), init.Reference)

	var paid int64
	require.NoError(t, db.Model(&paymentModels.Payment{}).Count(&paid).Error)
	assert.Zero(t, paid)

	// The owner still verifies normally
	status, _ = do(t, app, httptest.NewRequest("GET", "/payments/verify?reference="+init.Reference, nil))
	assert.Equal(t, 200, status)
}

func TestVerifyRejectsMalformedReference(t *testing.T) {
	app, _ := newApp(t)

	for _, ref := range []string{"..%2F..%2Fsubaccount", "a%3FperPage%3D1", "a%23b", strings.Repeat("x", 101)} {
		status, _ := do(t, app, httptest.NewRequest("GET", "/payments/verify?reference="+ref, nil))
		assert.Equal(t, 422, status, ref)
	}
}

func TestInitializeRejects(t *testing.T) {
	app, _ := newApp(t)

	status, _ := do(t, app, postJSON("/payments/initialize", `{}`))
	assert.Equal(t, 422, status)

	status, _ = do(t, app, postJSON("/payments/initialize", `{"courseId":"free"}`))
	assert.Equal(t, 400, status)

	status, _ = do(t, app, postJSON("/payments/initialize", `{"courseId":"missing"}`))
	assert.Equal(t, 404, status)

	status, _ = do(t, app, httptest.NewRequest("GET", "/payments/verify", nil))
	assert.Equal(t, 422, status)

	status, _ = do(t, app, httptest.NewRequest("GET", "/payments/verify?reference=unknown", nil))
	assert.Equal(t, 400, status)
}

func webhookRequest(body []byte, header, signature string) *http.Request {
	req := httptest.NewRequest("POST", "/payments/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(header, signature)
	return req
}

func chargeEvent(reference, courseID string) []byte {
	return []byte(fmt.Sprintf(`{"event":"charge.success","data":{"status":"success","reference":%q,"amount":500000,"currency":"NGN","customer":{"email":"u2@example.com"},"metadata":{"courseId":%q,"userId":"u2","instructorId":"i1","creatorAmount":4000,"platformFee":1000}}}`, reference, courseID))
}

func TestWebhook(t *testing.T) {
	app, db := newApp(t)
	body := chargeEvent("SKC-W1", "c1")

	status, out := do(t, app, webhookRequest(body, "x-signature", gateway.Sign(secret, body)))
	require.Equal(t, 200, status, string(out))
	assert.JSONEq(t, `{"received":true}`, string(out))

	// Redelivery under the gateway's own header name
	status, _ = do(t, app, webhookRequest(body, "x-paystack-signature", gateway.Sign(secret, body)))
	assert.Equal(t, 200, status)

	var enrollments int64
	require.NoError(t, db.Model(&courseModels.Enrollment{}).Where("user_id = ?", "u2").Count(&enrollments).Error)
	assert.EqualValues(t, 1, enrollments)

	status, out = do(t, app, webhookRequest(body, "x-signature", "deadbeef"))
	assert.Equal(t, 401, status)
	assert.JSONEq(t, `{"message":"Invalid signature"}`, string(out))

	orphan := []byte(`{"event":"charge.success","data":{"status":"success","reference":"SKC-W2","amount":100}}`)
	status, _ = do(t, app, webhookRequest(orphan, "x-signature", gateway.Sign(secret, orphan)))
	assert.Equal(t, 400, status)

	other := []byte(`{"event":"transfer.success","data":{"reference":"TRF"}}`)
	status, _ = do(t, app, webhookRequest(other, "x-signature", gateway.Sign(secret, other)))
	assert.Equal(t, 200, status)
}

func TestCreatePayoutAccount(t *testing.T) {
	app, _ := newApp(t)

	status, body := do(t, app, postJSON("/payments/payout-account", `{"businessName":"Ada","bankCode":"058","accountNumber":"12345"}`))
	assert.Equal(t, 422, status)
	var env envelope
	require.NoError(t, json.Unmarshal(body, &env))
	assert.Contains(t, string(env.Data), "accountNumber must be 10 characters long!")

	status, body = do(t, app, postJSON("/payments/payout-account", `{"businessName":"Ada","bankCode":"058","accountNumber":"0123456789","percentageCharge":15}`))
	require.Equal(t, 201, status, string(body))
	require.NoError(t, json.Unmarshal(body, &env))

	var account paymentModels.PayoutAccount
	require.NoError(t, json.Unmarshal(env.Data, &account))
	assert.Equal(t, "ACCT_0123456789", account.SubaccountCode)
	assert.Equal(t, "i1", account.InstructorID)
}
